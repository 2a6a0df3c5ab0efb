package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thescaler/shortener/internal/model"
	"github.com/thescaler/shortener/internal/repository"
)

// ClickStore is the slice of the repository the recorder needs.
type ClickStore interface {
	IncrementClicks(ctx context.Context, code string) error
	InsertAnalytics(ctx context.Context, code, country string) error
}

// EventPublisher mirrors click events to an external consumer.
type EventPublisher interface {
	Publish(event model.ClickEvent)
}

const recordTimeout = 5 * time.Second

// Recorder persists click analytics off the request path. Record hands
// an event to a background worker and returns immediately; the caller
// never observes whether recording succeeded. Failures are logged and
// discarded, never retried.
type Recorder struct {
	store     ClickStore
	publisher EventPublisher
	logger    *slog.Logger

	queue chan model.ClickEvent
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRecorder starts the background worker. publisher may be nil when no
// broker is configured.
func NewRecorder(store ClickStore, publisher EventPublisher, logger *slog.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		store:     store,
		publisher: publisher,
		logger:    logger,
		queue:     make(chan model.ClickEvent, queueSize),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record schedules a click for the given code and country. It never
// blocks: when the queue is full the event is dropped and logged, per
// the same discard policy as any other analytics failure.
func (r *Recorder) Record(code, country string) {
	event := model.ClickEvent{
		ID:         uuid.NewString(),
		ShortCode:  code,
		Country:    country,
		OccurredAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Warn("click recorder closed, dropping event",
			slog.String("code", code))
		return
	}
	select {
	case r.queue <- event:
	default:
		r.logger.Warn("click queue full, dropping event",
			slog.String("code", code),
			slog.String("country", country))
	}
}

// Close stops intake and drains events that were already scheduled.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for event := range r.queue {
		r.process(event)
	}
}

// process runs with its own context: the originating request is long
// gone and must not cancel the recording.
func (r *Recorder) process(event model.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	r.logger.Debug("recording click",
		slog.String("code", event.ShortCode),
		slog.String("country", event.Country))

	// A missing record is normal (the entry may reference a code that
	// was never persisted); only real store failures are logged.
	if err := r.store.IncrementClicks(ctx, event.ShortCode); err != nil && !errors.Is(err, repository.ErrNotFound) {
		r.logger.Error("failed to increment click count",
			slog.String("code", event.ShortCode),
			slog.String("error", err.Error()))
	}

	// The log entry is appended regardless of whether the counter was
	// found; the two writes are deliberately decoupled.
	if err := r.store.InsertAnalytics(ctx, event.ShortCode, event.Country); err != nil {
		r.logger.Error("failed to append analytics entry",
			slog.String("code", event.ShortCode),
			slog.String("error", err.Error()))
	}

	if r.publisher != nil {
		r.publisher.Publish(event)
	}
}
