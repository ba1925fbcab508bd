package listeners

import (
	"context"
	"hash/fnv"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

var mentionReplies = map[string][]string{
	"en": {
		"You called?",
		"That's me! What can I do for you?",
		"Heard my name. I'm listening.",
	},
	"fr": {
		"Vous m'avez appelée ?",
		"C'est moi ! Que puis-je faire ?",
	},
}

// Mention replies when the bot itself is mentioned in a message. The
// self id is read through a provider at dispatch time because it is
// not known until the gateway session is ready.
type Mention struct {
	self func() string
}

func NewMention(self func() string) *Mention {
	return &Mention{self: self}
}

func (l *Mention) Name() string { return "mention" }

func (l *Mention) Run(ctx context.Context, session Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error {
	_ = ctx
	if !cfg.MentionEnabled {
		return nil
	}
	if l.self == nil || !mentionsUser(msg, l.self()) {
		return nil
	}

	replies := mentionReplies[locale]
	if len(replies) == 0 {
		replies = mentionReplies["en"]
	}
	reply := replies[pick(msg.ID, len(replies))]
	_, err := session.ChannelMessageSendReply(msg.ChannelID, reply, msg.Reference())
	return err
}

func mentionsUser(msg *discordgo.MessageCreate, userID string) bool {
	if userID == "" {
		return false
	}
	for _, user := range msg.Mentions {
		if user != nil && user.ID == userID {
			return true
		}
	}
	return false
}

// pick maps a message id onto a reply index deterministically, which
// keeps tests stable without a seeded rand.
func pick(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}
