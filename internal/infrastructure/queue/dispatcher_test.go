package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
)

type collectingSink struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (s *collectingSink) Record(_ context.Context, event domain.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *collectingSink) snapshot() []domain.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SessionEvent(nil), s.events...)
}

func TestDispatcher_PreservesPerSessionOrder(t *testing.T) {
	sink := &collectingSink{}
	d := NewDispatcher(3, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.SessionEventType{domain.EventResolved, domain.EventLogin, domain.EventLogout}
	for _, typ := range types {
		if err := d.Record(context.Background(), domain.SessionEvent{Type: typ, SessionKey: "abc"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.snapshot()) < len(types) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	got := sink.snapshot()
	if len(got) != len(types) {
		t.Fatalf("expected %d events, got %d", len(types), len(got))
	}
	for i, typ := range types {
		if got[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, got[i].Type)
		}
	}
}

func TestDispatcher_FlushesOnCancel(t *testing.T) {
	sink := &collectingSink{}
	d := NewDispatcher(1, sink, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_ = d.Record(context.Background(), domain.SessionEvent{Type: domain.EventLogin, SessionKey: "k"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if n := len(sink.snapshot()); n != 5 {
		t.Fatalf("expected buffered events to be flushed, got %d", n)
	}
}

func TestDispatcher_FullQueue(t *testing.T) {
	d := NewDispatcher(1, &collectingSink{}, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if err := d.Record(context.Background(), domain.SessionEvent{SessionKey: "k"}); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	err := d.Record(context.Background(), domain.SessionEvent{SessionKey: "k"})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	sink := &collectingSink{err: errors.New("mongo down")}
	d := NewDispatcher(1, sink, zerolog.Nop())

	_ = d.Record(context.Background(), domain.SessionEvent{SessionKey: "k"})
	_ = d.Record(context.Background(), domain.SessionEvent{SessionKey: "k"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if n := len(sink.snapshot()); n != 2 {
		t.Fatalf("expected both writes attempted, got %d", n)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &collectingSink{}, zerolog.Nop())
	first := d.shardIndex("session-key")
	for i := 0; i < 10; i++ {
		if d.shardIndex("session-key") != first {
			t.Fatal("shard index must be deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}
