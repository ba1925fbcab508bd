package commands

import (
	"context"
	"fmt"
	"time"

	"becca-bot/internal/listeners"
	"becca-bot/internal/router"
	"becca-bot/internal/stats"
	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Ping struct{}

func NewPing() *Ping { return &Ping{} }

func (c *Ping) Name() string        { return "ping" }
func (c *Ping) Description() string { return "Check that I'm awake" }

func (c *Ping) Run(ctx context.Context, session listeners.Session, req router.Request, cfg storage.GuildSettings) (router.Response, error) {
	return router.Response{Content: "Pong! I'm here.", Success: true}, nil
}

type LevelReader interface {
	GetLevel(ctx context.Context, guildID, userID string) (storage.UserLevel, error)
}

type Levels struct {
	store LevelReader
}

func NewLevels(store LevelReader) *Levels { return &Levels{store: store} }

func (c *Levels) Name() string        { return "levels" }
func (c *Levels) Description() string { return "See your experience in this server" }

func (c *Levels) Run(ctx context.Context, session listeners.Session, req router.Request, cfg storage.GuildSettings) (router.Response, error) {
	level, err := c.store.GetLevel(ctx, req.GuildID, req.AuthorID)
	if err != nil {
		return router.Response{}, err
	}
	embed := &discordgo.MessageEmbed{
		Title: "Your level",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Points", Value: fmt.Sprintf("%d", level.Points), Inline: true},
			{Name: "Messages", Value: fmt.Sprintf("%d", level.Messages), Inline: true},
		},
	}
	return router.Response{Embed: embed, Success: true}, nil
}

type StatsReader interface {
	Report(ctx context.Context, guildID string, since time.Time) (stats.Report, error)
}

// Stats summarizes the last day of pipeline activity for the guild.
type Stats struct {
	reader StatsReader
}

func NewStats(reader StatsReader) *Stats { return &Stats{reader: reader} }

func (c *Stats) Name() string        { return "stats" }
func (c *Stats) Description() string { return "See what I've been up to today" }

func (c *Stats) Run(ctx context.Context, session listeners.Session, req router.Request, cfg storage.GuildSettings) (router.Response, error) {
	report, err := c.reader.Report(ctx, req.GuildID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return router.Response{}, err
	}
	embed := &discordgo.MessageEmbed{
		Title: "Last 24 hours",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Events", Value: fmt.Sprintf("%d", report.Total), Inline: true},
			{Name: "Commands run", Value: fmt.Sprintf("%d", report.ByEvent[stats.EventCommandInvoked]), Inline: true},
			{Name: "Scams blocked", Value: fmt.Sprintf("%d", report.ByEvent[stats.EventMessageBlocked]), Inline: true},
		},
	}
	return router.Response{Embed: embed, Success: true}, nil
}

// Help lists the registered commands. It receives the table it
// describes, so registration order is also display order.
type Help struct {
	commands []router.Command
}

func NewHelp(commands []router.Command) *Help { return &Help{commands: commands} }

func (c *Help) Name() string        { return "help" }
func (c *Help) Description() string { return "List my commands" }

func (c *Help) Run(ctx context.Context, session listeners.Session, req router.Request, cfg storage.GuildSettings) (router.Response, error) {
	fields := make([]*discordgo.MessageEmbedField, 0, len(c.commands)+1)
	for _, cmd := range c.commands {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   cfg.Prefix + cmd.Name(),
			Value:  cmd.Description(),
			Inline: false,
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:   cfg.Prefix + c.Name(),
		Value:  c.Description(),
		Inline: false,
	})
	embed := &discordgo.MessageEmbed{Title: "Commands", Fields: fields}
	return router.Response{Embed: embed, Success: true}, nil
}

// Table assembles the ordered command list used by both the text
// router and the slash path. Order here is matching order.
func Table(store LevelReader, reader StatsReader) []router.Command {
	base := []router.Command{NewPing(), NewLevels(store), NewStats(reader)}
	return append(base, NewHelp(base))
}
