package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const relayBatchSize = 100

// Topic is the broker topic an event type is published to.
func Topic(prefix, eventType string) string {
	return prefix + eventType
}

// OutboxRelay publishes committed outbox events to the message broker.
type OutboxRelay struct {
	outbox      repository.Outbox
	publisher   messaging.Publisher
	topicPrefix string
	interval    time.Duration
	logger      *zap.Logger
}

func NewOutboxRelay(outbox repository.Outbox, publisher messaging.Publisher, topicPrefix string, interval time.Duration, logger *zap.Logger) *OutboxRelay {
	return &OutboxRelay{
		outbox:      outbox,
		publisher:   publisher,
		topicPrefix: topicPrefix,
		interval:    interval,
		logger:      logger,
	}
}

// Run relays pending events every interval until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("failed to relay outbox events", zap.Error(err))
			}
		}
	}
}

// RelayOnce publishes one batch of pending events in order and reports how
// many were published. It stops at the first publish failure so later events
// never overtake earlier ones.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.Pending(ctx, relayBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending events: %w", err)
	}

	published := make([]string, 0, len(pending))
	var publishErr error
	for _, rec := range pending {
		topic := Topic(r.topicPrefix, rec.EventType)
		if err := r.publisher.PublishEvent(ctx, topic, rec.StreamID, json.RawMessage(rec.Payload)); err != nil {
			publishErr = fmt.Errorf("failed to publish %s event %s: %w", rec.EventType, rec.ID, err)
			break
		}
		published = append(published, rec.ID)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return 0, fmt.Errorf("failed to mark events published: %w", err)
		}
		r.logger.Debug("outbox events relayed", zap.Int("count", len(published)))
	}
	return len(published), publishErr
}
