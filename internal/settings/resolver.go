package settings

import (
	"context"

	"becca-bot/internal/config"
	"becca-bot/internal/storage"
)

// Store is the slice of the storage layer the resolver needs.
type Store interface {
	EnsureGuildSettings(ctx context.Context, guildID, guildName string, defaults storage.GuildSettings) (storage.GuildSettings, error)
}

// Resolver owns ServerConfig reads for the pipeline. Every guild that
// produces a message gets a default record materialized on first
// access; repeated calls return the stored record unchanged.
type Resolver struct {
	store    Store
	defaults storage.GuildSettings
}

func New(store Store, cfg config.Config) *Resolver {
	return &Resolver{
		store: store,
		defaults: storage.GuildSettings{
			Prefix:           cfg.DefaultPrefix,
			Language:         cfg.DefaultLanguage,
			HeartsEnabled:    cfg.Listeners.Hearts,
			ThanksEnabled:    cfg.Listeners.Thanks,
			LevelsEnabled:    cfg.Listeners.Levels,
			MentionEnabled:   cfg.Listeners.Mention,
			AntiphishEnabled: cfg.Listeners.Antiphish,
		},
	}
}

func (r *Resolver) Resolve(ctx context.Context, guildID, guildName string) (storage.GuildSettings, error) {
	return r.store.EnsureGuildSettings(ctx, guildID, guildName, r.defaults)
}
