package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging"
)

// Broker publishes and consumes JSON events with segmentio/kafka-go.
type Broker struct {
	brokers []string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafkaGo.Writer
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// NewBroker creates a new Kafka publisher and subscriber.
func NewBroker(brokers []string, logger *zap.Logger) *Broker {
	return &Broker{
		brokers: brokers,
		logger:  logger,
		writers: make(map[string]*kafkaGo.Writer),
	}
}

// writer returns the writer for topic, creating it on first use.
func (k *Broker) writer(topic string) *kafkaGo.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(k.brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return k.writer(topic).WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

func (k *Broker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				k.logger.Info("consumer shutting down", zap.String("topic", topic))
				return
			}
			k.logger.Error("error reading message", zap.String("topic", topic), zap.Error(err))
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			k.logger.Error("error handling message", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// Close flushes and closes every writer.
func (k *Broker) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var err error
	for topic, w := range k.writers {
		if cerr := w.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close writer for %s: %w", topic, cerr))
		}
	}
	k.writers = make(map[string]*kafkaGo.Writer)
	return err
}
