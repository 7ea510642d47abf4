package outbox

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-process outbox. Sent events are dropped, failed ones
// stay for inspection.
type MemoryStore struct {
	mu     sync.Mutex
	seq    int64
	events []*Event
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Record(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ev.ID = s.seq
	ev.Status = StatusPending
	ev.CreatedAt = s.now().UTC()
	ev.Headers = maps.Clone(ev.Headers)
	s.events = append(s.events, &ev)
	return nil
}

func (s *MemoryStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var batch []Event
	for _, ev := range s.events {
		if len(batch) >= batchSize {
			break
		}
		expired := ev.Status == StatusInProgress && now.After(ev.LeaseUntil)
		if ev.Status != StatusPending && !expired {
			continue
		}
		ev.Status = StatusInProgress
		ev.RelayID = relayID
		ev.LeaseUntil = now.Add(lease)
		batch = append(batch, copyEvent(ev))
	}
	return batch, nil
}

func (s *MemoryStore) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		sent[id] = struct{}{}
	}
	kept := s.events[:0]
	for _, ev := range s.events {
		if _, ok := sent[ev.ID]; !ok {
			kept = append(kept, ev)
		}
	}
	clear(s.events[len(kept):])
	s.events = kept
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events {
		if ev.ID != id {
			continue
		}
		ev.RetryCount++
		ev.LastError = &errMsg
		ev.RelayID = ""
		if ev.RetryCount >= MaxAttempts {
			ev.Status = StatusFailed
		} else {
			ev.Status = StatusPending
		}
		return nil
	}
	return nil
}

// Events returns a snapshot of every event still held, oldest first.
func (s *MemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, copyEvent(ev))
	}
	return out
}

func copyEvent(ev *Event) Event {
	c := *ev
	c.Headers = maps.Clone(ev.Headers)
	c.Payload = append([]byte(nil), ev.Payload...)
	return c
}
