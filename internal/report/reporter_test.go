package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type captureSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *captureSink) Send(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type stuckSink struct{ release chan struct{} }

func (s *stuckSink) Send(Entry) error {
	<-s.release
	return nil
}

func TestHandleReturnsDistinctIDs(t *testing.T) {
	sink := &captureSink{}
	reporter := New(zap.NewNop(), sink, 8)
	defer reporter.Close()

	first := reporter.Handle(context.Background(), "hearts listener", errors.New("boom"), "Guild", "hi")
	second := reporter.Handle(context.Background(), "hearts listener", errors.New("boom"), "Guild", "hi")
	if first == "" || second == "" {
		t.Fatalf("expected non-empty correlation ids")
	}
	if first == second {
		t.Fatalf("expected distinct correlation ids, got %q twice", first)
	}
}

func TestReportsReachSink(t *testing.T) {
	sink := &captureSink{}
	reporter := New(zap.NewNop(), sink, 8)

	reporter.Handle(context.Background(), "command", errors.New("boom"), "", "")
	reporter.Close()

	if sink.count() != 1 {
		t.Fatalf("expected 1 delivered report, got %d", sink.count())
	}
}

func TestHandleNeverBlocks(t *testing.T) {
	sink := &stuckSink{release: make(chan struct{})}
	reporter := New(zap.NewNop(), sink, 1)
	defer close(sink.release)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			reporter.Handle(context.Background(), "pipeline", errors.New("boom"), "", "")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Handle blocked on a slow sink")
	}
}
