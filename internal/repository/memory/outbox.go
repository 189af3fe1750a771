package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type outbox struct {
	store *Store
}

// NewOutbox creates an Outbox backed by store.
func NewOutbox(store *Store) repository.Outbox {
	return &outbox{store: store}
}

func (o *outbox) Append(ctx context.Context, streamID string, streamType string, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}
	o.store.wlock(ctx)
	defer o.store.wunlock(ctx)

	now := time.Now().UTC()
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		o.store.outbox = append(o.store.outbox, entity.EventRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
	}
	return nil
}

func (o *outbox) Pending(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	o.store.rlock(ctx)
	defer o.store.runlock(ctx)
	out := make([]entity.EventRecord, 0)
	for _, rec := range o.store.outbox {
		if rec.PublishedAt != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (o *outbox) MarkPublished(ctx context.Context, ids []string) error {
	o.store.wlock(ctx)
	defer o.store.wunlock(ctx)
	marked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	now := time.Now().UTC()
	for i := range o.store.outbox {
		if _, ok := marked[o.store.outbox[i].ID]; ok {
			o.store.outbox[i].PublishedAt = &now
		}
	}
	return nil
}

// DisplayCache is a process-local ProductDisplayCache.
type DisplayCache struct {
	mu    sync.RWMutex
	items map[string]entity.ProductDisplay
}

// NewDisplayCache creates an empty DisplayCache.
func NewDisplayCache() *DisplayCache {
	return &DisplayCache{items: make(map[string]entity.ProductDisplay)}
}

var _ repository.ProductDisplayCache = (*DisplayCache)(nil)

func (c *DisplayCache) Get(_ context.Context, key string) (*entity.ProductDisplay, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (c *DisplayCache) Put(_ context.Context, d entity.ProductDisplay) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[d.Key] = d
	return nil
}

func (c *DisplayCache) Evict(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
