package bot

import (
	"context"
	"fmt"

	"becca-bot/internal/commands"

	"github.com/bwmarrin/discordgo"
)

const sweepBatch = 50

// The methods below are the owner console's maintenance surface.

func (b *Bot) RegisterCommands(ctx context.Context) error {
	_ = ctx
	return commands.Register(b.session, b.table)
}

func (b *Bot) UnregisterCommand(ctx context.Context, name string) error {
	_ = ctx
	return commands.Unregister(b.session, name)
}

func (b *Bot) ViewCommands(ctx context.Context) ([]string, error) {
	_ = ctx
	existing, err := b.session.ApplicationCommands(b.session.State.User.ID, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(existing))
	for _, cmd := range existing {
		names = append(names, cmd.Name)
	}
	return names, nil
}

func (b *Bot) PurgeGuild(ctx context.Context, guildID string) error {
	return b.store.PurgeGuild(ctx, guildID)
}

// SweepChannel runs the security check over a channel's recent history
// and returns how many messages it flagged. The sweep ignores the
// per-guild toggle so the owner can inspect guilds that opted out.
func (b *Bot) SweepChannel(ctx context.Context, channelID string) (int, error) {
	channel, err := b.session.Channel(channelID)
	if err != nil {
		return 0, fmt.Errorf("resolve channel: %w", err)
	}
	if channel.GuildID == "" {
		return 0, fmt.Errorf("channel %s is not in a guild", channelID)
	}

	cfg, err := b.resolver.Resolve(ctx, channel.GuildID, b.guildName(channel.GuildID))
	if err != nil {
		return 0, err
	}
	cfg.AntiphishEnabled = true

	history, err := b.session.ChannelMessages(channelID, sweepBatch, "", "", "")
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, message := range history {
		if message == nil || message.Author == nil || message.Author.Bot {
			continue
		}
		if message.GuildID == "" {
			message.GuildID = channel.GuildID
		}
		hit, err := b.security.Scan(ctx, b.session, &discordgo.MessageCreate{Message: message}, cfg)
		if err != nil {
			b.reporter.Handle(ctx, "channel sweep", err, cfg.GuildName, message.Content)
			continue
		}
		if hit {
			flagged++
		}
	}
	return flagged, nil
}
