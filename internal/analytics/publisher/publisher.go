// Package publisher mirrors analytics events onto a Kafka topic for
// downstream consumers (aggregation, exports). The stream is a bonus sink:
// publish failures are counted and logged, never pushed back at the
// recorder.
package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"linkdeck/internal/analytics/metrics"
	"linkdeck/internal/analytics/models"
)

// wireEvent is the JSON shape published to the click topic.
type wireEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ParentID  string    `json:"parent_id"`
	Country   string    `json:"country,omitempty"`
	Device    string    `json:"device"`
	Platform  string    `json:"platform,omitempty"`
	UTMSource string    `json:"utm_source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// KafkaPublisher produces click events with franz-go. Production is async;
// delivery callbacks only log and count.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

// NewKafka connects a producer for the given brokers and topic.
func NewKafka(brokers []string, topic string, opts ...Option) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1 << 20),
	)
	if err != nil {
		return nil, err
	}
	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish produces one event asynchronously. Failures are absorbed here.
func (p *KafkaPublisher) Publish(ctx context.Context, event *models.Event) {
	payload, err := json.Marshal(wireEvent{
		ID:        event.ID.String(),
		Kind:      string(event.Kind),
		ParentID:  event.ParentID.String(),
		Country:   event.Country,
		Device:    string(event.Device),
		Platform:  event.Platform,
		UTMSource: event.UTMSource,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		p.logger.Error("failed to marshal click event", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ParentID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("click event publish failed", "error", err)
			if p.metrics != nil {
				p.metrics.IncrementPublishError()
			}
		}
	})
}

// Close flushes outstanding records and shuts the producer down.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return err
	}
	p.client.Close()
	return nil
}
