package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "STORAGE_DRIVER", "DATABASE_URL",
		"MESSAGING_DRIVER", "KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "PRODUCT_CACHE_TTL", "ORDER_POLICY", "OUTBOX_POLL_INTERVAL", "SEED_PRODUCTS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, MessagingNone, cfg.MessagingDriver)
	assert.Equal(t, OrderPolicySingle, cfg.OrderPolicy)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
	assert.True(t, cfg.SeedProducts)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("MESSAGING_DRIVER", "watermill-kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ORDER_POLICY", "open-setup")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED_PRODUCTS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, MessagingWatermillKafka, cfg.MessagingDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, OrderPolicyOpenSetup, cfg.OrderPolicy)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.SeedProducts)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_DRIVER", "mysql"},
		{"MESSAGING_DRIVER", "nats"},
		{"ORDER_POLICY", "many"},
		{"REDIS_DB", "zero"},
		{"PRODUCT_CACHE_TTL", "soon"},
		{"OUTBOX_POLL_INTERVAL", "-1s"},
		{"SEED_PRODUCTS", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
