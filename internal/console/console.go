// Package console implements the owner-only maintenance channel. It is
// deliberately separate from the command router: it is gated on author
// identity, triggered by a literal word, and never registered as a
// visible command.
package console

import (
	"context"
	"fmt"
	"strings"

	"becca-bot/internal/listeners"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const trigger = "Naomi"

// Maintenance is the set of privileged operations the console can
// reach. The bot implements it against the live session and store.
type Maintenance interface {
	RegisterCommands(ctx context.Context) error
	UnregisterCommand(ctx context.Context, name string) error
	ViewCommands(ctx context.Context) ([]string, error)
	PurgeGuild(ctx context.Context, guildID string) error
	SweepChannel(ctx context.Context, channelID string) (int, error)
}

type Reporter interface {
	Handle(ctx context.Context, label string, err error, guildName, content string) string
}

type Console struct {
	ownerID  string
	maint    Maintenance
	reporter Reporter
	logger   *zap.Logger
}

func New(ownerID string, maint Maintenance, reporter Reporter, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{ownerID: ownerID, maint: maint, reporter: reporter, logger: logger}
}

// Handle consumes a message when it is an owner console invocation and
// reports whether it did. The acknowledgement reply is sent before the
// requested operation runs and is never retracted, even on failure.
func (c *Console) Handle(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate) bool {
	if msg == nil || msg.Author == nil || msg.Author.ID != c.ownerID {
		return false
	}
	fields := strings.Fields(msg.Content)
	if len(fields) == 0 || fields[0] != trigger {
		return false
	}

	_, _ = session.ChannelMessageSendReply(msg.ChannelID, "At your service.", msg.Reference())
	if len(fields) == 1 {
		return true
	}

	sub := strings.ToLower(fields[1])
	arg := ""
	if len(fields) > 2 {
		arg = fields[2]
	}

	var (
		note string
		err  error
	)
	switch sub {
	case "register":
		err = c.maint.RegisterCommands(ctx)
		note = "Commands registered."
	case "unregister":
		if arg == "" {
			note = "I need a command name for that."
			break
		}
		err = c.maint.UnregisterCommand(ctx, arg)
		note = "Removed " + arg + "."
	case "view":
		var names []string
		names, err = c.maint.ViewCommands(ctx)
		if len(names) == 0 {
			note = "No commands registered."
		} else {
			note = "Registered: " + strings.Join(names, ", ")
		}
	case "purge":
		if arg == "" {
			note = "I need a guild id for that."
			break
		}
		err = c.maint.PurgeGuild(ctx, arg)
		note = "Purged data for " + arg + "."
	case "fish":
		if arg == "" {
			note = "I need a channel id for that."
			break
		}
		var flagged int
		flagged, err = c.maint.SweepChannel(ctx, arg)
		note = fmt.Sprintf("Sweep complete, flagged %d message(s).", flagged)
	default:
		// Acknowledged above; an unknown word is not an error.
		return true
	}

	if err != nil {
		id := c.reporter.Handle(ctx, "console "+sub, err, "", msg.Content)
		_, _ = session.ChannelMessageSend(msg.ChannelID, "That did not go well. Reference: "+id)
		return true
	}
	_, _ = session.ChannelMessageSend(msg.ChannelID, note)
	return true
}
