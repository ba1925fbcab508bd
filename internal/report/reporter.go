package report

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one failure report bound for the operator sink.
type Entry struct {
	ID        string
	Label     string
	GuildName string
	Content   string
	Err       error
	At        time.Time
}

// Sink delivers a report to the operator-facing channel.
type Sink interface {
	Send(entry Entry) error
}

// Reporter converts escaped errors into correlated, non-fatal events.
// Handle returns a correlation id synchronously; delivery to the sink
// happens on a background goroutine so reporting can never block or
// fail the caller's own control flow. The report is enqueued before
// Handle returns; when the queue is full it is dropped with a log
// warning rather than stalling the pipeline.
type Reporter struct {
	logger *zap.Logger
	sink   Sink
	queue  chan Entry
	done   chan struct{}
	once   sync.Once
}

func New(logger *zap.Logger, sink Sink, buffer int) *Reporter {
	if buffer <= 0 {
		buffer = 64
	}
	r := &Reporter{
		logger: logger,
		sink:   sink,
		queue:  make(chan Entry, buffer),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Reporter) Handle(ctx context.Context, label string, err error, guildName, content string) string {
	_ = ctx
	entry := Entry{
		ID:        uuid.NewString(),
		Label:     label,
		GuildName: guildName,
		Content:   content,
		Err:       err,
		At:        time.Now(),
	}

	r.logger.Error("contained failure",
		zap.String("error_id", entry.ID),
		zap.String("label", label),
		zap.String("guild", guildName),
		zap.Error(err),
	)

	select {
	case r.queue <- entry:
	default:
		r.logger.Warn("report queue full, dropping", zap.String("error_id", entry.ID))
	}
	return entry.ID
}

func (r *Reporter) Close() {
	r.once.Do(func() {
		close(r.queue)
		<-r.done
	})
}

func (r *Reporter) drain() {
	defer close(r.done)
	for entry := range r.queue {
		if r.sink == nil {
			continue
		}
		if err := r.sink.Send(entry); err != nil {
			r.logger.Warn("report delivery failed", zap.String("error_id", entry.ID), zap.Error(err))
		}
	}
}

// WebhookSink posts reports to a Discord webhook as embeds.
type WebhookSink struct {
	session *discordgo.Session
	id      string
	token   string
}

func NewWebhookSink(session *discordgo.Session, id, token string) *WebhookSink {
	return &WebhookSink{session: session, id: id, token: token}
}

func (s *WebhookSink) Send(entry Entry) error {
	if s.id == "" || s.token == "" {
		return nil
	}
	message := ""
	if entry.Err != nil {
		message = entry.Err.Error()
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Contained failure: " + entry.Label,
		Description: message,
		Timestamp:   entry.At.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Error ID", Value: entry.ID, Inline: true},
		},
	}
	if entry.GuildName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Guild", Value: entry.GuildName, Inline: true})
	}
	if entry.Content != "" {
		content := entry.Content
		if len(content) > 1000 {
			content = content[:1000]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Message", Value: content, Inline: false})
	}
	_, err := s.session.WebhookExecute(s.id, s.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}
