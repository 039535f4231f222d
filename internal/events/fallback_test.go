package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstore/pkg/platform/circuit"
)

func TestFallbackSinkRoutesAroundBrokenPrimary(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	primary := &recordingSink{err: errors.New("broker down")}
	fallback := &recordingSink{}
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	sink := NewFallbackSink(primary, fallback, breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, sink.Publish(ctx, Record{Name: name}))
	}

	// two attempts open the breaker; the third record skips the primary
	assert.Equal(t, []string{"a", "b"}, primary.names())
	assert.Equal(t, []string{"a", "b", "c"}, fallback.names())
	assert.True(t, breaker.IsOpen())

	primary.mu.Lock()
	primary.err = nil
	primary.mu.Unlock()
	now = now.Add(time.Minute)

	require.NoError(t, sink.Publish(ctx, Record{Name: "d"}))
	assert.Equal(t, []string{"a", "b", "d"}, primary.names())
	assert.False(t, breaker.IsOpen())
}
