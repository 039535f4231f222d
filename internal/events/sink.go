package events

import (
	"context"
	"log/slog"
)

// Sink receives records drained by the Worker.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
}

// LogSink writes every record as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, rec Record) error {
	s.logger.InfoContext(ctx, "device "+string(rec.Category),
		"device_id", rec.DeviceID,
		"device_type", rec.DeviceType,
		"device_kind", rec.DeviceKind,
		"store_id", rec.StoreID,
		"aisle", rec.AisleNumber,
		"name", rec.Name,
		"request_id", rec.RequestID,
		"log_type", "device",
	)
	return nil
}
