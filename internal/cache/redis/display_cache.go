package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const keyPrefix = "storefront:product-display:"

// DisplayCache stores product display attributes in Redis as JSON.
type DisplayCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

var _ repository.ProductDisplayCache = (*DisplayCache)(nil)

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewDisplayCache creates a DisplayCache. A zero ttl keeps entries until evicted.
func NewDisplayCache(client goredis.UniversalClient, ttl time.Duration) *DisplayCache {
	return &DisplayCache{client: client, ttl: ttl}
}

func (c *DisplayCache) Get(ctx context.Context, key string) (*entity.ProductDisplay, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read display cache for %s: %w", key, err)
	}

	var d entity.ProductDisplay
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode display cache for %s: %w", key, err)
	}
	return &d, nil
}

func (c *DisplayCache) Put(ctx context.Context, d entity.ProductDisplay) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode display cache for %s: %w", d.Key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+d.Key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write display cache for %s: %w", d.Key, err)
	}
	return nil
}

func (c *DisplayCache) Evict(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to evict display cache for %s: %w", key, err)
	}
	return nil
}
