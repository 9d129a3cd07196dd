package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/pkg/mq"
)

type memStore struct {
	mu     sync.Mutex
	events []Event
}

func (s *memStore) Add(ctx context.Context, topic, key string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		ID:        key,
		Topic:     topic,
		Key:       key,
		Payload:   "{}",
		Status:    StatusPending,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *memStore) FetchPending(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Status == StatusPending && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *memStore) MarkSent(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		for i := range s.events {
			if s.events[i].ID == id {
				s.events[i].Status = StatusSent
			}
		}
	}
	return nil
}

func (s *memStore) MarkFailed(ctx context.Context, id string, attempts int, status Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Attempts = attempts
			s.events[i].Status = status
			s.events[i].LastError = reason
		}
	}
	return nil
}

func (s *memStore) status(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev.Status
		}
	}
	return ""
}

type fakeProducer struct {
	err   error
	calls int
	sent  []mq.Message
}

func (p *fakeProducer) Publish(ctx context.Context, msgs ...mq.Message) error {
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msgs...)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestRelayOnceDelivers(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Add(ctx, "order.placed", "ORD-1", nil))
	require.NoError(t, store.Add(ctx, "order.placed", "ORD-2", nil))

	prod := &fakeProducer{}
	relay := NewRelay(store, prod, RelayConfig{BatchSize: 10}, nil)

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, prod.sent, 2)
	assert.Equal(t, "ORD-1", prod.sent[0].Key)
	assert.Equal(t, "ORD-1", prod.sent[0].Headers["event_id"])
	assert.Equal(t, StatusSent, store.status("ORD-1"))

	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, prod.calls)
}

func TestRelayMarksDeadAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Add(ctx, "order.cancelled", "ORD-9", nil))

	prod := &fakeProducer{err: errors.New("broker unavailable")}
	relay := NewRelay(store, prod, RelayConfig{BatchSize: 10, MaxAttempts: 2}, nil)

	_, err := relay.RelayOnce(ctx)
	assert.Error(t, err)
	assert.Equal(t, StatusPending, store.status("ORD-9"))

	_, err = relay.RelayOnce(ctx)
	assert.Error(t, err)
	assert.Equal(t, StatusDead, store.status("ORD-9"))
}

func TestRelayBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Add(ctx, "order.placed", "ORD-3", nil))

	prod := &fakeProducer{err: errors.New("broker unavailable")}
	relay := NewRelay(store, prod, RelayConfig{BatchSize: 10, MaxAttempts: 100}, nil)

	for i := 0; i < 3; i++ {
		_, _ = relay.RelayOnce(ctx)
	}
	assert.Equal(t, 3, prod.calls)

	_, err := relay.RelayOnce(ctx)
	assert.Error(t, err)
	assert.Equal(t, 3, prod.calls, "open breaker must not reach the producer")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(&memStore{}, &fakeProducer{}, RelayConfig{Interval: 10 * time.Millisecond}, nil)

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
