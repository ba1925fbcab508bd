package pipeline

import (
	"context"
	"strings"

	"becca-bot/internal/listeners"
	"becca-bot/internal/stats"
	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type SecurityCheck interface {
	Scan(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, cfg storage.GuildSettings) (bool, error)
}

type Reporter interface {
	Handle(ctx context.Context, label string, err error, guildName, content string) string
}

type Recorder interface {
	Record(ctx context.Context, guildID, event, detail string)
}

// Dispatcher runs the ordered listener sequence for one admitted
// message. The security check goes first and can terminate the whole
// pass; after it, listeners run strictly in registration order, each
// awaited to completion before the next. A failing listener is
// reported under its own name and never stops its siblings.
//
// Ordering is an invariant, not an implementation detail: later
// listeners may assume earlier ones already touched shared per-guild
// counters, and the strict sequence is what makes those touches safe
// without locks within one message's pass.
type Dispatcher struct {
	security   SecurityCheck
	ambient    []listeners.Listener
	skippable  []listeners.Listener
	reporter   Reporter
	recorder   Recorder
	prefixMode bool
}

// New builds a dispatcher. ambient listeners always run; skippable
// listeners are bypassed in prefix mode when the message carries the
// guild's command prefix, handing the tail of the pass to the router.
func New(security SecurityCheck, ambient, skippable []listeners.Listener, reporter Reporter, recorder Recorder, prefixMode bool) *Dispatcher {
	return &Dispatcher{
		security:   security,
		ambient:    ambient,
		skippable:  skippable,
		reporter:   reporter,
		recorder:   recorder,
		prefixMode: prefixMode,
	}
}

// Dispatch processes one message and reports whether it was blocked by
// the security check. It never fails; every listener error is
// contained here.
func (d *Dispatcher) Dispatch(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) bool {
	if d.security != nil {
		flagged, err := d.security.Scan(ctx, session, msg, cfg)
		if err != nil {
			d.reporter.Handle(ctx, "security check", err, cfg.GuildName, msg.Content)
		}
		if flagged {
			return true
		}
	}

	d.runAll(ctx, session, msg, locale, cfg, d.ambient)

	if !d.prefixCommand(msg.Content, cfg.Prefix) {
		d.runAll(ctx, session, msg, locale, cfg, d.skippable)
	}
	return false
}

func (d *Dispatcher) runAll(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings, group []listeners.Listener) {
	for _, listener := range group {
		if err := listener.Run(ctx, session, msg, locale, cfg); err != nil {
			d.reporter.Handle(ctx, listener.Name()+" listener", err, cfg.GuildName, msg.Content)
			if d.recorder != nil {
				d.recorder.Record(ctx, msg.GuildID, stats.EventListenerFailure, listener.Name())
			}
		}
	}
}

func (d *Dispatcher) prefixCommand(content, prefix string) bool {
	if !d.prefixMode || prefix == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(content), strings.ToLower(prefix))
}
