package listeners

import (
	"context"
	"strings"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

var thanksTriggers = []string{"thank you", "thanks", "thx", "ty "}

// Thanks acknowledges gratitude aimed at other members with a heart
// reaction on the thanking message.
type Thanks struct {
	glyph string
}

func NewThanks(glyph string) *Thanks {
	if glyph == "" {
		glyph = "💖"
	}
	return &Thanks{glyph: glyph}
}

func (l *Thanks) Name() string { return "thanks" }

func (l *Thanks) Run(ctx context.Context, session Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error {
	_ = ctx
	_ = locale
	if !cfg.ThanksEnabled {
		return nil
	}
	if len(msg.Mentions) == 0 || !containsThanks(msg.Content) {
		return nil
	}

	thanked := false
	for _, user := range msg.Mentions {
		if user != nil && !user.Bot && user.ID != msg.Author.ID {
			thanked = true
			break
		}
	}
	if !thanked {
		return nil
	}
	return session.MessageReactionAdd(msg.ChannelID, msg.ID, l.glyph)
}

func containsThanks(content string) bool {
	lower := strings.ToLower(content)
	for _, trigger := range thanksTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
