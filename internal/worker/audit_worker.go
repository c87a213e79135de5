package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/school-service/internal/events"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 2 * time.Second
)

// Sink delivers one audit event outside the process.
type Sink interface {
	Send(ctx context.Context, event events.Event) error
}

// AuditWorker queues audit events and delivers them to a Sink from its own goroutine, so
// callers never wait on the sink. Events arriving while the queue is full are dropped.
type AuditWorker struct {
	sink        Sink
	logger      *zap.Logger
	sendTimeout time.Duration

	mu     sync.RWMutex
	queue  chan queued
	closed bool
	done   chan struct{}
	once   sync.Once
}

type queued struct {
	ctx   context.Context
	event events.Event
}

// AuditWorkerOption customizes an AuditWorker.
type AuditWorkerOption func(*AuditWorker)

// WithQueueSize bounds the number of undelivered events.
func WithQueueSize(size int) AuditWorkerOption {
	return func(w *AuditWorker) {
		if size > 0 {
			w.queue = make(chan queued, size)
		}
	}
}

// WithSendTimeout limits each delivery attempt.
func WithSendTimeout(timeout time.Duration) AuditWorkerOption {
	return func(w *AuditWorker) {
		if timeout > 0 {
			w.sendTimeout = timeout
		}
	}
}

// NewAuditWorker builds a worker around sink. Call Start before use and Stop on shutdown.
func NewAuditWorker(sink Sink, logger *zap.Logger, opts ...AuditWorkerOption) *AuditWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &AuditWorker{
		sink:        sink,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
		queue:       make(chan queued, defaultQueueSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the delivery goroutine.
func (w *AuditWorker) Start() {
	w.once.Do(func() {
		go w.run()
	})
}

// Send enqueues event without blocking. The request context is kept for its values only;
// its cancellation does not abort delivery.
func (w *AuditWorker) Send(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.logger.Warn("audit event dropped", zap.String("event_id", event.ID), zap.String("reason", "worker stopped"))
		return nil
	}
	select {
	case w.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		w.logger.Warn("audit event dropped",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("reason", "queue full"))
	}
	return nil
}

// Stop closes the queue and waits until queued events are delivered or ctx ends.
func (w *AuditWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	w.Start()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AuditWorker) run() {
	defer close(w.done)
	for item := range w.queue {
		w.deliver(item)
	}
}

func (w *AuditWorker) deliver(item queued) {
	if w.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(item.ctx, w.sendTimeout)
	defer cancel()
	if err := w.sink.Send(ctx, item.event); err != nil {
		w.logger.Warn("audit delivery failed",
			zap.String("event_id", item.event.ID),
			zap.String("event_type", string(item.event.Type)),
			zap.Error(err))
	}
}
