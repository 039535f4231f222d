package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka publishes records as JSON to a single topic, keyed by device id so a
// device's records stay ordered within a partition.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// deliveryTimeout stops the producer retrying a record forever while the
// broker is unreachable.
const deliveryTimeout = 10 * time.Second

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (k *Kafka) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(k.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, k.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", k.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", k.topic, resp.Err)
	}
	return nil
}

func (k *Kafka) Publish(ctx context.Context, rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode device record: %w", err)
	}
	res := k.client.ProduceSync(ctx, &kgo.Record{
		Key:   []byte(rec.DeviceID),
		Value: value,
	})
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("produce device record: %w", err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
