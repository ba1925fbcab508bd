package bot

import (
	"context"
	"errors"
	"testing"

	"becca-bot/internal/antiphish"
	"becca-bot/internal/config"
	"becca-bot/internal/listeners"
	"becca-bot/internal/pipeline"
	"becca-bot/internal/report"
	"becca-bot/internal/router"
	"becca-bot/internal/settings"
	"becca-bot/internal/stats"
	"becca-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type countingStore struct {
	ensures int
	err     error
}

func (s *countingStore) EnsureGuildSettings(ctx context.Context, guildID, guildName string, defaults storage.GuildSettings) (storage.GuildSettings, error) {
	s.ensures++
	if s.err != nil {
		return storage.GuildSettings{}, s.err
	}
	out := defaults
	out.GuildID = guildID
	out.GuildName = guildName
	return out, nil
}

type captureSink struct {
	entries []report.Entry
}

func (s *captureSink) Send(entry report.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *captureSink) labels() []string {
	out := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.Label)
	}
	return out
}

type recordingListener struct {
	calls int
}

func (l *recordingListener) Name() string { return "tally" }

func (l *recordingListener) Run(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, locale string, cfg storage.GuildSettings) error {
	l.calls++
	return nil
}

type stubSecurity struct {
	flag bool
}

func (s *stubSecurity) Scan(ctx context.Context, session listeners.Session, msg *discordgo.MessageCreate, cfg storage.GuildSettings) (bool, error) {
	return s.flag, nil
}

type recordingCommand struct {
	name  string
	calls int
	boom  bool
}

func (c *recordingCommand) Name() string        { return c.name }
func (c *recordingCommand) Description() string { return "records invocations" }

func (c *recordingCommand) Run(ctx context.Context, session listeners.Session, req router.Request, cfg storage.GuildSettings) (router.Response, error) {
	c.calls++
	if c.boom {
		panic("handler exploded")
	}
	return router.Response{Content: "ok", Success: true}, nil
}

type fixture struct {
	bot      *Bot
	store    *countingStore
	sink     *captureSink
	reporter *report.Reporter
	listener *recordingListener
	sec      *stubSecurity
	cmd      *recordingCommand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DiscordToken = "token"
	cfg.OwnerID = "owner"
	cfg.CommandMode = config.ModePrefix

	session, err := discordgo.New("Bot token")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	session.State.User = &discordgo.User{ID: "self", Username: "becca"}

	dbStore, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(dbStore.Close)
	if err := dbStore.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	counting := &countingStore{}
	sink := &captureSink{}
	reporter := report.New(zap.NewNop(), sink, 8)
	t.Cleanup(reporter.Close)
	statsSvc := stats.New(dbStore)
	resolver := settings.New(counting, cfg)
	security := antiphish.New(dbStore, statsSvc, zap.NewNop())
	cmd := &recordingCommand{name: "echo"}

	b := New(cfg, zap.NewNop(), session, dbStore, resolver, reporter, statsSvc, security, []router.Command{cmd})

	return &fixture{
		bot:      b,
		store:    counting,
		sink:     sink,
		reporter: reporter,
		listener: &recordingListener{},
		sec:      &stubSecurity{},
		cmd:      cmd,
	}
}

// instrument swaps in a recording pipeline so dispatch order and
// short-circuits are observable.
func (f *fixture) instrument() {
	f.bot.dispatcher = pipeline.New(f.sec, []listeners.Listener{f.listener}, nil, f.reporter, nil, true)
	f.bot.router.WithDelay(0)
}

func guildMessage(authorID, content string, isBot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Bot: isBot},
	}}
}

func TestBotAuthorNeverReachesResolver(t *testing.T) {
	f := newFixture(t)
	f.instrument()

	f.bot.onMessageCreate(f.bot.session, guildMessage("u1", "hello", true))
	f.bot.onMessageCreate(f.bot.session, guildMessage("self", "hello", false))

	if f.store.ensures != 0 {
		t.Fatalf("settings lookup ran %d times for rejected authors", f.store.ensures)
	}
	if f.listener.calls != 0 || f.cmd.calls != 0 {
		t.Fatalf("rejected author reached dispatch: listener=%d command=%d", f.listener.calls, f.cmd.calls)
	}
}

func TestResolveFailureAbortsDispatch(t *testing.T) {
	f := newFixture(t)
	f.instrument()
	f.store.err = errors.New("database is gone")

	f.bot.onMessageCreate(f.bot.session, guildMessage("u1", "becca!echo", false))

	if f.listener.calls != 0 || f.cmd.calls != 0 {
		t.Fatalf("dispatch ran despite resolve failure: listener=%d command=%d", f.listener.calls, f.cmd.calls)
	}
	f.reporter.Close()
	for _, label := range f.sink.labels() {
		if label == "settings resolve" {
			return
		}
	}
	t.Fatalf("resolve failure was not reported, got %v", f.sink.labels())
}

func TestBlockedMessageSkipsListenersAndRouter(t *testing.T) {
	f := newFixture(t)
	f.instrument()
	f.sec.flag = true

	f.bot.onMessageCreate(f.bot.session, guildMessage("u1", "becca!echo", false))

	if f.listener.calls != 0 {
		t.Fatalf("listener ran after security block")
	}
	if f.cmd.calls != 0 {
		t.Fatalf("router ran after security block")
	}
}

func TestAdmittedMessageDispatchesThenRoutes(t *testing.T) {
	f := newFixture(t)
	f.instrument()

	f.bot.onMessageCreate(f.bot.session, guildMessage("u1", "becca!echo", false))

	if f.store.ensures != 1 {
		t.Fatalf("settings lookup ran %d times, want 1", f.store.ensures)
	}
	if f.listener.calls != 1 {
		t.Fatalf("ambient listener ran %d times, want 1", f.listener.calls)
	}
	if f.cmd.calls != 1 {
		t.Fatalf("command ran %d times, want 1", f.cmd.calls)
	}
}

func TestOwnerConsolePreemptsDispatch(t *testing.T) {
	f := newFixture(t)
	f.instrument()

	f.bot.onMessageCreate(f.bot.session, guildMessage("owner", "Naomi", false))

	if f.store.ensures != 0 || f.listener.calls != 0 {
		t.Fatalf("console message leaked into the pipeline: ensures=%d listener=%d", f.store.ensures, f.listener.calls)
	}
}

func TestDispatcherReadyBeforeStart(t *testing.T) {
	f := newFixture(t)

	if f.bot.dispatcher == nil {
		t.Fatalf("dispatcher not assembled at construction")
	}

	// A message arriving before Start must be processed, not dropped.
	f.bot.onMessageCreate(f.bot.session, guildMessage("u1", "hello", false))
	if f.store.ensures != 1 {
		t.Fatalf("early message was dropped: ensures=%d", f.store.ensures)
	}
}

func TestInteractionPanicContained(t *testing.T) {
	f := newFixture(t)
	f.cmd.boom = true

	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Data:      discordgo.ApplicationCommandInteractionData{Name: "echo"},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
	}}

	f.bot.onInteractionCreate(f.bot.session, interaction)

	if f.cmd.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", f.cmd.calls)
	}
	f.reporter.Close()
	for _, label := range f.sink.labels() {
		if label == "interaction pipeline" {
			return
		}
	}
	t.Fatalf("panic was not reported, got %v", f.sink.labels())
}
