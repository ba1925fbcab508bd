package antiphish

import (
	"context"
	"strings"

	"becca-bot/internal/listeners"
	"becca-bot/internal/stats"
	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var keywordSignals = []string{"nitro", "free", "claim", "gift", "steam", "giveaway"}

type DomainStore interface {
	ListDomainAllow(ctx context.Context, guildID string) ([]string, error)
	ListDomainBlock(ctx context.Context, guildID string) ([]string, error)
}

type Recorder interface {
	Record(ctx context.Context, guildID, event, detail string)
}

// Check is the pipeline's high-priority security gate. It runs before
// every behavioral listener; a flagged message terminates dispatch for
// that message. Deletion and the in-channel warning are the check's
// own side effects.
type Check struct {
	store    DomainStore
	recorder Recorder
	logger   *zap.Logger
}

func New(store DomainStore, recorder Recorder, logger *zap.Logger) *Check {
	return &Check{store: store, recorder: recorder, logger: logger}
}

// Scan reports whether the message is a blocked scam attempt.
func (c *Check) Scan(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, cfg storage.GuildSettings) (bool, error) {
	if !cfg.AntiphishEnabled {
		return false, nil
	}
	urls := ExtractURLs(msg.Content)
	if len(urls) == 0 {
		return false, nil
	}

	allowlist, blocklist, err := c.domainSets(ctx, msg.GuildID)
	if err != nil {
		return false, err
	}

	for _, raw := range urls {
		normalized, domain, err := NormalizeURL(raw)
		if err != nil {
			continue
		}
		allowed, blocked := DomainMatch(domain, allowlist, blocklist)
		if allowed {
			continue
		}
		if !blocked && !hasKeywords(msg.Content) {
			continue
		}

		c.logger.Warn("scam link blocked",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.Author.ID),
			zap.String("url", normalized),
		)
		c.recorder.Record(ctx, msg.GuildID, stats.EventMessageBlocked, "suspicious link: "+normalized)
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		_, _ = session.ChannelMessageSend(msg.ChannelID, "I removed a suspicious link. Stay safe out there!")
		return true, nil
	}

	return false, nil
}

func (c *Check) domainSets(ctx context.Context, guildID string) (map[string]struct{}, map[string]struct{}, error) {
	allow, err := c.store.ListDomainAllow(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	block, err := c.store.ListDomainBlock(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}

	allowlist := make(map[string]struct{}, len(allow))
	for _, domain := range allow {
		allowlist[domain] = struct{}{}
	}
	blocklist := make(map[string]struct{}, len(block))
	for _, domain := range block {
		blocklist[domain] = struct{}{}
	}
	return allowlist, blocklist, nil
}

func hasKeywords(content string) bool {
	lower := strings.ToLower(content)
	for _, keyword := range keywordSignals {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
