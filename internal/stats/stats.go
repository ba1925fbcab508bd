package stats

import (
	"context"
	"time"

	"becca-bot/internal/storage"
)

const (
	EventMessageBlocked  = "message_blocked"
	EventListenerFailure = "listener_failure"
	EventCommandInvoked  = "command_invoked"
)

// Service is the pipeline's only mutation point for counters; callers
// record named events and read aggregates, nothing else.
type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Record(ctx context.Context, guildID, event, detail string) {
	if s == nil || s.store == nil {
		return
	}
	_ = s.store.RecordPipelineEvent(ctx, guildID, event, detail)
}

type Report struct {
	Total   int
	ByEvent map[string]int
}

func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	events, err := s.store.ListPipelineEvents(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByEvent: make(map[string]int)}
	for _, event := range events {
		report.Total++
		report.ByEvent[event.Event]++
	}
	return report, nil
}
