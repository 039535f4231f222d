package events

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultDrainTimeout bounds how long Run keeps publishing after cancellation.
const DefaultDrainTimeout = 5 * time.Second

// Queue is a bounded in-process buffer. Enqueue never blocks: when the buffer
// is full the record is dropped and counted.
type Queue struct {
	ch      chan Record
	dropped atomic.Int64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan Record, size)}
}

// Enqueue offers rec to the queue and reports whether it was accepted.
func (q *Queue) Enqueue(rec Record) bool {
	select {
	case q.ch <- rec:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dropped returns how many records were rejected because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Len returns the number of buffered records.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Worker consumes records from a queue and publishes them to a sink.
type Worker struct {
	sink         Sink
	inbox        <-chan Record
	logger       *slog.Logger
	drainTimeout time.Duration
}

type WorkerOption func(*Worker)

// WithDrainTimeout caps the time spent flushing buffered records after
// cancellation. Records still queued when it expires are discarded.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.drainTimeout = d
		}
	}
}

func NewWorker(q *Queue, sink Sink, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{sink: sink, inbox: q.ch, logger: logger, drainTimeout: DefaultDrainTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run publishes until ctx is cancelled, then drains what is already buffered
// within the drain timeout. A failed publish is logged and the record discarded.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case rec := <-w.inbox:
			w.publish(ctx, rec)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()
	for {
		if ctx.Err() != nil {
			if n := len(w.inbox); n > 0 && w.logger != nil {
				w.logger.Warn("drain timed out, discarding device records", "remaining", n)
			}
			return
		}
		select {
		case rec := <-w.inbox:
			w.publish(ctx, rec)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, rec Record) {
	if err := w.sink.Publish(ctx, rec); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to publish device record",
			"device_id", rec.DeviceID,
			"name", rec.Name,
			"error", err,
		)
	}
}
