package messaging

import "context"

// Publisher defines an interface for publishing events to a message broker.
// Events are JSON encoded; a json.RawMessage is sent as is.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler)
}

// Handler processes one message payload.
type Handler func(ctx context.Context, payload []byte) error

// NopPublisher drops every event. It backs MESSAGING_DRIVER=none.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
