// Package audit records immutable, time-expiring events for every successful
// catalog and order mutation. Recording is best-effort: a lost audit event is
// logged and retried, but never fails or rolls back the business operation
// that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
)

// ttlSeconds is the audit retention window. Every event expires exactly this
// many seconds after its creation timestamp.
const ttlSeconds = 300

// Entry describes a mutation to be recorded. The composite key, the creation
// timestamp and the expiry are assigned when the record is materialised, so a
// retried delivery gets a fresh sort key instead of colliding with a previous
// attempt.
type Entry struct {
	EntityType models.EntityType `json:"entityType"`
	EntityCode string            `json:"entityCode"`
	EventType  models.EventType  `json:"eventType"`
	Email      string            `json:"email"`
	RequestID  string            `json:"requestId"`
	Info       any               `json:"info"`
}

// BuildEvent materialises an entry into an audit event at the given time.
func BuildEvent(e Entry, now time.Time) (models.Event, error) {
	info, err := json.Marshal(e.Info)
	if err != nil {
		return models.Event{}, fmt.Errorf("marshal event info: %w", err)
	}

	ts := now.UnixMilli()
	return models.Event{
		PK:        fmt.Sprintf("#%s_%s", e.EntityType, e.EntityCode),
		SK:        fmt.Sprintf("%s#%d", e.EventType, ts),
		Email:     e.Email,
		CreatedAt: ts,
		RequestID: e.RequestID,
		EventType: e.EventType,
		Info:      info,
		TTL:       ts/1000 + ttlSeconds,
	}, nil
}

const (
	outboxSize      = 256
	deliverAttempts = 3
	deliverBackoff  = 100 * time.Millisecond
	deliverTimeout  = 5 * time.Second
)

// Recorder queues entries on an in-process outbox and delivers them to a Sink
// on background workers, with retries. Record never blocks the caller.
type Recorder struct {
	sink    Sink
	workers int

	mu      sync.Mutex
	closed  bool
	entries chan Entry
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder delivering to the given sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{
		sink:    sink,
		workers: 2,
		entries: make(chan Entry, outboxSize),
	}
}

// Start launches the outbox workers.
func (r *Recorder) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for e := range r.entries {
				r.deliver(e)
			}
		}()
	}
}

// Record enqueues an entry for delivery. When the outbox is full or already
// closed the entry is dropped with a log line; the audit trail is best-effort
// and must not block a confirmed business mutation.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		log.Printf("[Audit] Recorder closed, dropping event: type=%s entity=%s correlation_id=%s",
			e.EventType, e.EntityCode, e.RequestID)
		return
	}
	select {
	case r.entries <- e:
	default:
		log.Printf("[Audit] Outbox full, dropping event: type=%s entity=%s correlation_id=%s",
			e.EventType, e.EntityCode, e.RequestID)
	}
}

// Close stops intake, drains the outbox, and waits for the workers.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.entries)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) deliver(e Entry) {
	var err error
	for attempt := 1; attempt <= deliverAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err = r.sink.Deliver(ctx, e)
		cancel()
		if err == nil {
			return
		}
		log.Printf("[Audit] Delivery attempt %d failed: %v type=%s entity=%s correlation_id=%s",
			attempt, err, e.EventType, e.EntityCode, e.RequestID)
		if attempt < deliverAttempts {
			time.Sleep(time.Duration(attempt) * deliverBackoff)
		}
	}
	log.Printf("[Audit] Giving up on event after %d attempts: type=%s entity=%s correlation_id=%s",
		deliverAttempts, e.EventType, e.EntityCode, e.RequestID)
}
