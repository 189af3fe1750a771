package watermill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging"
)

const partitionKeyMetadata = "partition_key"

// Bus adapts watermill publishers and subscribers to the messaging ports.
type Bus struct {
	publisher     message.Publisher
	newSubscriber func(groupID string) (message.Subscriber, error)
	// shared subscribers are owned by the bus and closed with it.
	shared bool
	logger *zap.Logger
}

var (
	_ messaging.Publisher  = (*Bus)(nil)
	_ messaging.Subscriber = (*Bus)(nil)
)

// NewGoChannelBus creates an in-process bus. Every consumer receives every
// message regardless of group.
func NewGoChannelBus(logger *zap.Logger) *Bus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewLoggerAdapter(logger))

	return &Bus{
		publisher: pubSub,
		newSubscriber: func(string) (message.Subscriber, error) {
			return pubSub, nil
		},
		shared: true,
		logger: logger,
	}
}

// NewKafkaBus creates a bus on top of watermill-kafka. Messages are keyed by
// the event stream id so events of one order stay on one partition.
func NewKafkaBus(brokers []string, logger *zap.Logger) (*Bus, error) {
	wmLogger := NewLoggerAdapter(logger)
	marshaler := kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(partitionKeyMetadata), nil
	})

	publisherConfig := kafka.DefaultSaramaSyncPublisherConfig()
	publisherConfig.ClientID = "storefront"
	publisherConfig.Producer.RequiredAcks = sarama.WaitForAll

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: publisherConfig,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &Bus{
		publisher: publisher,
		newSubscriber: func(groupID string) (message.Subscriber, error) {
			subscriberConfig := kafka.DefaultSaramaSubscriberConfig()
			subscriberConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

			return kafka.NewSubscriber(kafka.SubscriberConfig{
				Brokers:               brokers,
				Unmarshaler:           marshaler,
				OverwriteSaramaConfig: subscriberConfig,
				ConsumerGroup:         groupID,
			}, wmLogger)
		},
		logger: logger,
	}, nil
}

func (b *Bus) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(partitionKeyMetadata, key)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	sub, err := b.newSubscriber(groupID)
	if err != nil {
		b.logger.Error("failed to create subscriber", zap.String("topic", topic), zap.Error(err))
		return
	}
	if !b.shared {
		defer sub.Close()
	}

	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		b.logger.Error("failed to subscribe", zap.String("topic", topic), zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("consumer shutting down", zap.String("topic", topic))
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				b.logger.Error("error handling message",
					zap.String("topic", topic),
					zap.String("message_uuid", msg.UUID),
					zap.Error(err))
			}
			// Failed messages are logged and dropped, not redelivered.
			msg.Ack()
		}
	}
}

func (b *Bus) Close() error {
	return b.publisher.Close()
}
