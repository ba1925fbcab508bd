package bot

import (
	"context"
	"fmt"

	"becca-bot/internal/antiphish"
	"becca-bot/internal/commands"
	"becca-bot/internal/config"
	"becca-bot/internal/console"
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

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *storage.Store
	resolver *settings.Resolver
	reporter *report.Reporter
	stats    *stats.Service
	security *antiphish.Check
	table    []router.Command
	session  *discordgo.Session

	console    *console.Console
	dispatcher *pipeline.Dispatcher
	router     *router.Router
}

func New(cfg config.Config, logger *zap.Logger, session *discordgo.Session, store *storage.Store, resolver *settings.Resolver, reporter *report.Reporter, statsSvc *stats.Service, security *antiphish.Check, table []router.Command) *Bot {
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		resolver: resolver,
		reporter: reporter,
		stats:    statsSvc,
		security: security,
		table:    table,
		session:  session,
	}
	b.console = console.New(cfg.OwnerID, b, reporter, logger)
	b.router = router.New(table, reporter, statsSvc, router.Glyphs{
		Success: cfg.Glyphs.Success,
		Failure: cfg.Glyphs.Failure,
	})

	// The whole pipeline is assembled before any handler can fire; the
	// mention listener defers its self-id read because that id only
	// exists once the session is ready.
	ambient := []listeners.Listener{
		listeners.NewHearts(store),
		listeners.NewThanks(""),
	}
	skippable := []listeners.Listener{
		listeners.NewLevels(store),
		listeners.NewMention(b.selfID),
	}
	b.dispatcher = pipeline.New(security, ambient, skippable, reporter, statsSvc, cfg.CommandMode == config.ModePrefix)
	return b
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	if b.cfg.CommandMode == config.ModeSlash {
		b.session.AddHandler(b.onInteractionCreate)
	}

	if err := b.session.Open(); err != nil {
		return err
	}

	if b.cfg.CommandMode == config.ModeSlash {
		if err := commands.Register(b.session, b.table); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

// onMessageCreate is the containment boundary for the whole message
// pipeline: nothing escaping it may take down the gateway loop.
func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			content := ""
			if msg != nil {
				content = msg.Content
			}
			b.reporter.Handle(ctx, "message pipeline", fmt.Errorf("panic: %v", r), "", content)
		}
	}()

	decision := pipeline.Admit(b.selfID(), msg)
	if !decision.Admitted {
		if decision.Reason == pipeline.ReasonDirectMessage && b.cfg.DMPolicy == config.DMRoute {
			b.handleDM(session, msg)
		}
		return
	}

	if b.console.Handle(ctx, session, msg) {
		return
	}

	cfg, err := b.resolver.Resolve(ctx, msg.GuildID, b.guildName(msg.GuildID))
	if err != nil {
		b.reporter.Handle(ctx, "settings resolve", err, "", msg.Content)
		return
	}

	if blocked := b.dispatcher.Dispatch(ctx, session, msg, cfg.Language, cfg); blocked {
		return
	}

	if b.cfg.CommandMode == config.ModePrefix {
		b.router.Route(ctx, session, msg, cfg)
	}
}

func (b *Bot) handleDM(session *discordgo.Session, msg *discordgo.MessageCreate) {
	_, _ = session.ChannelMessageSend(msg.ChannelID, "I do my best work in a server. Find me there?")
}

// onInteractionCreate is the slash path's containment boundary, the
// same contract as onMessageCreate: a panicking handler becomes a
// correlated report, never a dead process.
func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			b.reporter.Handle(ctx, "interaction pipeline", fmt.Errorf("panic: %v", r), "", "")
		}
	}()
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := interaction.ApplicationCommandData()

	var cmd router.Command
	for _, candidate := range b.table {
		if candidate.Name() == data.Name {
			cmd = candidate
			break
		}
	}
	if cmd == nil {
		return
	}

	cfg, err := b.resolver.Resolve(ctx, interaction.GuildID, b.guildName(interaction.GuildID))
	if err != nil {
		b.reporter.Handle(ctx, "settings resolve", err, "", data.Name)
		return
	}

	authorID := ""
	if interaction.Member != nil && interaction.Member.User != nil {
		authorID = interaction.Member.User.ID
	} else if interaction.User != nil {
		authorID = interaction.User.ID
	}

	req := router.Request{
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		AuthorID:  authorID,
		Content:   "/" + data.Name,
	}
	resp, err := cmd.Run(ctx, session, req, cfg)
	if err != nil {
		id := b.reporter.Handle(ctx, cmd.Name()+" command", err, cfg.GuildName, req.Content)
		b.respondEmbed(session, interaction, router.FailureEmbed(cmd.Name(), id))
		return
	}
	b.stats.Record(ctx, interaction.GuildID, stats.EventCommandInvoked, cmd.Name())

	if resp.Embed != nil {
		b.respondEmbed(session, interaction, resp.Embed)
		return
	}
	b.respond(session, interaction, resp.Content)
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// selfID is empty until the gateway delivers READY.
func (b *Bot) selfID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) guildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return ""
	}
	return guild.Name
}
