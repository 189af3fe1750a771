package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

// StockWatcher consumes ProductStockUpdated events.
type StockWatcher struct {
	cache  repository.ProductDisplayCache
	logger *zap.Logger
}

func NewStockWatcher(cache repository.ProductDisplayCache, logger *zap.Logger) *StockWatcher {
	return &StockWatcher{cache: cache, logger: logger}
}

// HandleProductStockUpdated warns about products that sold out and drops
// their cached display entry.
func (w *StockWatcher) HandleProductStockUpdated(ctx context.Context, payload []byte) error {
	var event entity.ProductStockUpdated
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ProductStockUpdated event: %w", err)
	}

	if !event.Deactivated {
		w.logger.Debug("product stock updated",
			zap.String("product_key", event.ProductKey),
			zap.Int("new_stock", event.NewStock))
		return nil
	}

	w.logger.Warn("product sold out and deactivated",
		zap.String("product_key", event.ProductKey),
		zap.Int64("order_id", event.OrderID))
	if err := w.cache.Evict(ctx, event.ProductKey); err != nil {
		return fmt.Errorf("failed to evict product display: %w", err)
	}
	return nil
}
