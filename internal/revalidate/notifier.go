package revalidate

import (
	"context"
	"strconv"
	"time"

	"github.com/thenewsfeed/content-platform/pkg/kafka"
)

// ChangeEvent is the message published to the content-invalidate topic after
// a purge. Consumers (the cache warmer) use it to re-render the affected
// paths ahead of the next visitor. Delivery is at-most-once: a lost event
// costs one cold render, nothing more.
type ChangeEvent struct {
	Kind      string    `json:"kind"`
	ContentID int64     `json:"content_id,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Paths     []string  `json:"paths,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// KafkaNotifier publishes ChangeEvents to Kafka.
type KafkaNotifier struct {
	producer *kafka.Producer
}

// NewKafkaNotifier wraps a producer for the content-invalidate topic.
func NewKafkaNotifier(producer *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

var _ Notifier = (*KafkaNotifier)(nil)

// Notify publishes the event keyed by content id so successive mutations of
// the same item land on the same partition, preserving their order.
func (n *KafkaNotifier) Notify(ctx context.Context, event ChangeEvent) error {
	key := event.Kind
	if event.ContentID != 0 {
		key = strconv.FormatInt(event.ContentID, 10)
	}
	return n.producer.Publish(ctx, kafka.Event{Key: key, Value: event})
}

// Close flushes and closes the underlying producer.
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
