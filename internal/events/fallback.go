package events

import (
	"context"
	"log/slog"

	"smartstore/pkg/platform/circuit"
)

// FallbackSink publishes to primary while it is healthy and to fallback when
// primary fails or its breaker is open, so a broker outage degrades to
// logging instead of losing records.
type FallbackSink struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackSink(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger) *FallbackSink {
	return &FallbackSink{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackSink) Publish(ctx context.Context, rec Record) error {
	if !s.breaker.Allow() {
		return s.fallback.Publish(ctx, rec)
	}
	if err := s.primary.Publish(ctx, rec); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "device sink circuit opened",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		return s.fallback.Publish(ctx, rec)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "device sink circuit closed", "breaker", s.breaker.Name())
	}
	return nil
}
