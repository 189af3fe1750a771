package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

// OrderService settles orders: payment and the stock decrement happen in one
// transaction.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	outbox   repository.Outbox
	tx       repository.TxManager
	logger   *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	outbox repository.Outbox,
	tx repository.TxManager,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		outbox:   outbox,
		tx:       tx,
		logger:   logger,
	}
}

// GetOrder returns one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*entity.Order, error) {
	return s.ownedOrder(ctx, userID, orderID)
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]entity.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Pay marks a setup order paid and takes every item out of stock. A missing
// product or short stock aborts the whole payment and leaves the order in setup.
func (s *OrderService) Pay(ctx context.Context, userID, orderID int64) (*entity.Order, error) {
	var (
		order    *entity.Order
		depleted []string
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		depleted = nil

		var err error
		order, err = s.ownedOrder(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.OrderStatusSetup {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		events := make([]entity.Event, 0, len(order.Items)+1)
		var stockEvents []entity.Event
		for _, item := range order.Items {
			p, err := s.products.DecrementStock(ctx, item.ProductKey, item.Quantity)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("%w: product %s", ErrProductMissing, item.ProductKey)
			case errors.Is(err, repository.ErrInsufficientStock):
				return fmt.Errorf("%w: product %s, %d requested", ErrOversold, item.ProductKey, item.Quantity)
			case err != nil:
				return fmt.Errorf("failed to decrement stock of %s: %w", item.ProductKey, err)
			}

			if p.Stock == 0 {
				depleted = append(depleted, p.Key)
			}
			stockEvents = append(stockEvents, entity.ProductStockUpdated{
				ProductKey:  p.Key,
				OrderID:     order.ID,
				Quantity:    item.Quantity,
				NewStock:    p.Stock,
				Deactivated: p.Stock == 0,
			})
		}

		if err := order.MarkPaid(now); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if err := s.orders.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if err := s.clearCart(ctx, userID, now); err != nil {
			return err
		}

		events = append(events, entity.OrderPaid{
			OrderID:     order.ID,
			UserID:      userID,
			TotalAmount: order.TotalAmount,
			PaidAt:      now,
		})
		events = append(events, stockEvents...)
		if err := s.outbox.Append(ctx, strconv.FormatInt(order.ID, 10), orderStream, events); err != nil {
			return fmt.Errorf("failed to save settlement events: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOversold) || errors.Is(err, ErrProductMissing) {
			s.logger.Warn("settlement rolled back",
				zap.Int64("user_id", userID),
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("order paid",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.Stringer("total_amount", order.TotalAmount))
	for _, key := range depleted {
		s.logger.Info("product sold out and deactivated", zap.String("product_key", key))
	}
	return order, nil
}

func (s *OrderService) clearCart(ctx context.Context, userID int64, now time.Time) error {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	cart.Clear(now)
	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ownedOrder hides orders of other users behind ErrNotFound.
func (s *OrderService) ownedOrder(ctx context.Context, userID, orderID int64) (*entity.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: order not found or access denied", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: order not found or access denied", ErrNotFound)
	}
	return o, nil
}
