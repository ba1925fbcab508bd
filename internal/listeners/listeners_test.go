package listeners

import (
	"context"
	"testing"

	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	sent      []string
	replies   []string
	reactions []string
	deleted   []string
	typing    int
}

func (f *fakeSession) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	f.typing++
	return nil
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, "embed:"+embed.Title)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeSession) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.replies = append(f.replies, content)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return nil, nil
}

type fakeHearts struct {
	increments map[string]int
}

func (f *fakeHearts) IncrementHearts(ctx context.Context, guildID, userID string, delta int) (int, error) {
	if f.increments == nil {
		f.increments = make(map[string]int)
	}
	f.increments[userID] += delta
	return f.increments[userID], nil
}

type fakeLevels struct{ calls int }

func (f *fakeLevels) IncrementLevel(ctx context.Context, guildID, userID string, points int) (storage.UserLevel, error) {
	f.calls++
	return storage.UserLevel{GuildID: guildID, UserID: userID, Points: points}, nil
}

func guildMessage(content string, mentions ...*discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Author:    &discordgo.User{ID: "author"},
		Content:   content,
		Mentions:  mentions,
	}}
}

func enabledSettings() storage.GuildSettings {
	return storage.GuildSettings{
		GuildID:        "g1",
		HeartsEnabled:  true,
		ThanksEnabled:  true,
		LevelsEnabled:  true,
		MentionEnabled: true,
	}
}

func TestHeartsTalliesMentionedUsers(t *testing.T) {
	store := &fakeHearts{}
	listener := NewHearts(store)
	msg := guildMessage("<3 you both", &discordgo.User{ID: "u2"}, &discordgo.User{ID: "u3"})

	if err := listener.Run(context.Background(), &fakeSession{}, msg, "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.increments["u2"] != 1 || store.increments["u3"] != 1 {
		t.Fatalf("expected hearts for both mentioned users: %+v", store.increments)
	}
}

func TestHeartsSkipsSelfAndBots(t *testing.T) {
	store := &fakeHearts{}
	listener := NewHearts(store)
	msg := guildMessage("❤", &discordgo.User{ID: "author"}, &discordgo.User{ID: "b1", Bot: true})

	if err := listener.Run(context.Background(), &fakeSession{}, msg, "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.increments) != 0 {
		t.Fatalf("expected no hearts, got %+v", store.increments)
	}
}

func TestHeartsDisabledByToggle(t *testing.T) {
	store := &fakeHearts{}
	listener := NewHearts(store)
	cfg := enabledSettings()
	cfg.HeartsEnabled = false
	msg := guildMessage("<3", &discordgo.User{ID: "u2"})

	if err := listener.Run(context.Background(), &fakeSession{}, msg, "en", cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.increments) != 0 {
		t.Fatalf("expected toggle to gate hearts")
	}
}

func TestThanksReacts(t *testing.T) {
	session := &fakeSession{}
	listener := NewThanks("💖")
	msg := guildMessage("thanks a lot!", &discordgo.User{ID: "u2"})

	if err := listener.Run(context.Background(), session, msg, "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(session.reactions) != 1 || session.reactions[0] != "💖" {
		t.Fatalf("expected one heart reaction, got %v", session.reactions)
	}
}

func TestThanksIgnoresPlainMessages(t *testing.T) {
	session := &fakeSession{}
	listener := NewThanks("💖")

	if err := listener.Run(context.Background(), session, guildMessage("thanks anyway"), "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(session.reactions) != 0 {
		t.Fatalf("expected no reaction without mentions")
	}
}

func TestLevelsAwardsPoints(t *testing.T) {
	store := &fakeLevels{}
	listener := NewLevels(store)

	if err := listener.Run(context.Background(), &fakeSession{}, guildMessage("hello"), "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected one increment, got %d", store.calls)
	}
}

func TestMentionRepliesWhenBotMentioned(t *testing.T) {
	session := &fakeSession{}
	listener := NewMention(func() string { return "bot1" })
	msg := guildMessage("hey bot", &discordgo.User{ID: "bot1"})

	if err := listener.Run(context.Background(), session, msg, "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(session.replies) != 1 {
		t.Fatalf("expected one reply, got %v", session.replies)
	}
}

func TestMentionIgnoresOtherMentions(t *testing.T) {
	session := &fakeSession{}
	listener := NewMention(func() string { return "bot1" })
	msg := guildMessage("hey you", &discordgo.User{ID: "u2"})

	if err := listener.Run(context.Background(), session, msg, "en", enabledSettings()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(session.replies) != 0 {
		t.Fatalf("expected no reply, got %v", session.replies)
	}
}
