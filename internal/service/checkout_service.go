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

const orderStream = "order"

// OrderPolicy decides which existing orders block a new checkout.
type OrderPolicy string

const (
	// OrderPolicySingle allows one order per user, whatever its status.
	OrderPolicySingle OrderPolicy = "single"
	// OrderPolicyOpenSetup only blocks while the user has an unpaid order.
	OrderPolicyOpenSetup OrderPolicy = "open-setup"
)

// CheckoutOptions lists what a user can pick from at checkout.
type CheckoutOptions struct {
	Addresses []entity.Address       `json:"addresses"`
	Payments  []entity.PaymentMethod `json:"payments"`
}

// CheckoutService binds a cart to addresses and a payment method.
type CheckoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	payments  repository.PaymentMethodRepository
	outbox    repository.Outbox
	tx        repository.TxManager
	policy    OrderPolicy
	logger    *zap.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	addresses repository.AddressRepository,
	payments repository.PaymentMethodRepository,
	outbox repository.Outbox,
	tx repository.TxManager,
	policy OrderPolicy,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		addresses: addresses,
		payments:  payments,
		outbox:    outbox,
		tx:        tx,
		policy:    policy,
		logger:    logger,
	}
}

// CheckoutOptions returns the user's addresses and payment methods.
func (s *CheckoutService) CheckoutOptions(ctx context.Context, userID int64) (*CheckoutOptions, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return &CheckoutOptions{Addresses: addresses, Payments: payments}, nil
}

// SetCheckoutData creates the user's order in setup state from the current
// cart. The checks run in a fixed order and the first failure is reported.
func (s *CheckoutService) SetCheckoutData(ctx context.Context, userID, billingAddressID, shippingAddressID, paymentMethodID int64) (*entity.Order, error) {
	var order *entity.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkExistingOrders(ctx, userID); err != nil {
			return err
		}

		billing, err := s.ownedAddress(ctx, userID, billingAddressID, "billing")
		if err != nil {
			return err
		}
		shipping, err := s.ownedAddress(ctx, userID, shippingAddressID, "shipping")
		if err != nil {
			return err
		}
		payment, err := s.ownedPaymentMethod(ctx, userID, paymentMethodID)
		if err != nil {
			return err
		}

		cart, err := s.carts.FindByUser(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoCart
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(cart.Lines) == 0 {
			return ErrEmptyCart
		}

		order = entity.NewOrder(cart, billing, shipping, payment, time.Now().UTC())
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		placed := entity.OrderPlaced{
			OrderID:     order.ID,
			UserID:      userID,
			Items:       order.Items,
			TotalAmount: order.TotalAmount,
			PlacedAt:    order.CreatedAt,
		}
		if err := s.outbox.Append(ctx, strconv.FormatInt(order.ID, 10), orderStream, []entity.Event{placed}); err != nil {
			return fmt.Errorf("failed to save OrderPlaced event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.Stringer("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)))
	return order, nil
}

func (s *CheckoutService) checkExistingOrders(ctx context.Context, userID int64) error {
	existing, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	for _, o := range existing {
		if s.policy == OrderPolicyOpenSetup && o.Status != entity.OrderStatusSetup {
			continue
		}
		return fmt.Errorf("%w: order %d", ErrDuplicateOrder, o.ID)
	}
	return nil
}

// ownedAddress reports ErrInvalidAddress for an address that is absent or
// belongs to someone else.
func (s *CheckoutService) ownedAddress(ctx context.Context, userID, addressID int64, kind string) (*entity.Address, error) {
	a, err := s.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid %s address", ErrInvalidAddress, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("%w: invalid %s address", ErrInvalidAddress, kind)
	}
	return a, nil
}

func (s *CheckoutService) ownedPaymentMethod(ctx context.Context, userID, paymentMethodID int64) (*entity.PaymentMethod, error) {
	p, err := s.payments.FindByID(ctx, paymentMethodID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidPayment
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment method: %w", err)
	}
	if p.UserID != userID {
		return nil, ErrInvalidPayment
	}
	return p, nil
}
