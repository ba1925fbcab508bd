package router

import (
	"context"
	"strings"
	"time"

	"becca-bot/internal/listeners"
	"becca-bot/internal/stats"
	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// typingDelay paces command execution so the typing indicator is
// perceptible before the reply lands. Deliberate UX, not dead time.
const typingDelay = 3000 * time.Millisecond

// Request carries the message-derived fields a command handler needs,
// whether it arrived as prefixed text or as a slash interaction.
type Request struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	Content   string
}

// Response is a command's result: plain content or an embed, never
// both, plus the success flag that drives the reaction glyph.
type Response struct {
	Content string
	Embed   *discordgo.MessageEmbed
	Success bool
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, session listeners.Session, req Request, cfg storage.GuildSettings) (Response, error)
}

type Reporter interface {
	Handle(ctx context.Context, label string, err error, guildName, content string) string
}

type Recorder interface {
	Record(ctx context.Context, guildID, event, detail string)
}

type Glyphs struct {
	Success string
	Failure string
}

// Router matches prefixed message text against the ordered command
// table and invokes at most one handler per message.
type Router struct {
	commands []Command
	reporter Reporter
	recorder Recorder
	glyphs   Glyphs
	delay    time.Duration
}

func New(commands []Command, reporter Reporter, recorder Recorder, glyphs Glyphs) *Router {
	return &Router{
		commands: commands,
		reporter: reporter,
		recorder: recorder,
		glyphs:   glyphs,
		delay:    typingDelay,
	}
}

// WithDelay overrides the pacing delay. Tests use this; production
// keeps the default.
func (r *Router) WithDelay(delay time.Duration) {
	r.delay = delay
}

func (r *Router) Commands() []Command {
	return r.commands
}

// Route inspects the first whitespace token and runs the first command
// whose prefixed name matches it exactly. No match means no output.
func (r *Router) Route(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, cfg storage.GuildSettings) {
	fields := strings.Fields(msg.Content)
	if len(fields) == 0 {
		return
	}
	token := strings.ToLower(fields[0])
	prefix := strings.ToLower(cfg.Prefix)

	for _, cmd := range r.commands {
		if token != prefix+strings.ToLower(cmd.Name()) {
			continue
		}
		r.invoke(ctx, session, msg, cfg, cmd)
		return
	}
}

func (r *Router) invoke(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, cfg storage.GuildSettings, cmd Command) {
	_ = session.ChannelTyping(msg.ChannelID)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	req := Request{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		AuthorID:  msg.Author.ID,
		Content:   msg.Content,
	}
	resp, err := cmd.Run(ctx, session, req, cfg)
	if err != nil {
		id := r.reporter.Handle(ctx, cmd.Name()+" command", err, cfg.GuildName, msg.Content)
		_, _ = session.ChannelMessageSendEmbed(msg.ChannelID, FailureEmbed(cmd.Name(), id))
		return
	}
	if r.recorder != nil {
		r.recorder.Record(ctx, msg.GuildID, stats.EventCommandInvoked, cmd.Name())
	}

	if resp.Embed != nil {
		_, _ = session.ChannelMessageSendEmbed(msg.ChannelID, resp.Embed)
	} else {
		_, _ = session.ChannelMessageSend(msg.ChannelID, resp.Content)
	}

	glyph := r.glyphs.Failure
	if resp.Success {
		glyph = r.glyphs.Success
	}
	_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, glyph)
}

// FailureEmbed is the generic user-facing failure notice. It carries
// only the correlation id; detail stays on the operator side.
func FailureEmbed(label, errorID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Something went wrong",
		Description: "I could not finish the " + label + " command. Mention this reference when reporting it.",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reference", Value: errorID, Inline: true},
		},
	}
}
