package outbox

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// MaxAttempts is how many failed dispatches an event gets before it is
// parked as failed.
const MaxAttempts = 5

type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	CreatedAt     time.Time
	Status        Status
	RelayID       string
	LeaseUntil    time.Time
	RetryCount    int
	LastError     *string
}

// Recorder appends an event to the outbox. Implementations assign ID and
// CreatedAt.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Store is the relay's view of the outbox.
type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}
