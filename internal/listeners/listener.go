package listeners

import (
	"context"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// Session is the slice of the Discord session that listeners and the
// command path touch. *discordgo.Session satisfies it; tests substitute
// a recording fake.
type Session interface {
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Listener is one behavioral unit invoked for every admitted message.
// Implementations are stateless across invocations except for what
// they read and write through their own store, and those writes must
// be safe under interleaving with other in-flight messages. A returned
// error is contained by the dispatcher; it never stops siblings.
type Listener interface {
	Name() string
	Run(ctx context.Context, session Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error
}
