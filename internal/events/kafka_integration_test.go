//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"smartstore/pkg/testutil/containers"
)

func TestKafkaPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := NewKafka([]string{rp.Broker}, "smartstore.test-device-events")
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))

	rec := Record{Category: CategoryEvent, DeviceID: "cam1", Name: "customer_detected", OccurredAt: time.Now().UTC()}
	require.NoError(t, producer.Publish(ctx, rec))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("smartstore.test-device-events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	var got Record
	fetches.EachRecord(func(r *kgo.Record) {
		require.Equal(t, "cam1", string(r.Key))
		require.NoError(t, json.Unmarshal(r.Value, &got))
	})
	require.Equal(t, "customer_detected", got.Name)
}
