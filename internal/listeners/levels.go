package listeners

import (
	"context"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const pointsPerMessage = 5

// LevelStore is the leveling listener's own external store. The
// increment must be atomic; the listener relies on that for safety
// across concurrently processed messages.
type LevelStore interface {
	IncrementLevel(ctx context.Context, guildID, userID string, points int) (storage.UserLevel, error)
}

// Levels awards experience for every observed message.
type Levels struct {
	store LevelStore
}

func NewLevels(store LevelStore) *Levels {
	return &Levels{store: store}
}

func (l *Levels) Name() string { return "levels" }

func (l *Levels) Run(ctx context.Context, session Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error {
	_ = session
	_ = locale
	if !cfg.LevelsEnabled {
		return nil
	}
	_, err := l.store.IncrementLevel(ctx, msg.GuildID, msg.Author.ID, pointsPerMessage)
	return err
}
