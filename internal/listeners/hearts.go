package listeners

import (
	"context"
	"strings"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

var heartTriggers = []string{"<3", "❤", "💖", ":heart:"}

// HeartStore is the hearts listener's own external store.
type HeartStore interface {
	IncrementHearts(ctx context.Context, guildID, userID string, delta int) (int, error)
}

// Hearts tallies a heart for every user mentioned alongside a heart
// trigger, so affection shown in chat accumulates per member.
type Hearts struct {
	store HeartStore
}

func NewHearts(store HeartStore) *Hearts {
	return &Hearts{store: store}
}

func (l *Hearts) Name() string { return "hearts" }

func (l *Hearts) Run(ctx context.Context, session Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error {
	_ = session
	_ = locale
	if !cfg.HeartsEnabled {
		return nil
	}
	if !containsHeart(msg.Content) || len(msg.Mentions) == 0 {
		return nil
	}

	for _, user := range msg.Mentions {
		if user == nil || user.Bot || user.ID == msg.Author.ID {
			continue
		}
		if _, err := l.store.IncrementHearts(ctx, msg.GuildID, user.ID, 1); err != nil {
			return err
		}
	}
	return nil
}

func containsHeart(content string) bool {
	for _, trigger := range heartTriggers {
		if strings.Contains(content, trigger) {
			return true
		}
	}
	return false
}
