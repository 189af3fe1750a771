package entity

import (
	"errors"
	"time"
)

// ErrOrderNotPayable is returned when an order leaves a state other than setup.
var ErrOrderNotPayable = errors.New("order is already paid or cannot be processed")

// NewOrder snapshots a cart into an order in setup state.
func NewOrder(cart *Cart, billing, shipping *Address, payment *PaymentMethod, now time.Time) *Order {
	return &Order{
		UserID:            cart.UserID,
		CartID:            cart.ID,
		BillingAddressID:  billing.ID,
		ShippingAddressID: shipping.ID,
		PaymentMethodID:   payment.ID,
		Items:             cart.Snapshot(),
		TotalAmount:       cart.Total,
		Status:            OrderStatusSetup,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MarkPaid moves the order from setup to paid.
func (o *Order) MarkPaid(now time.Time) error {
	if o.Status != OrderStatusSetup {
		return ErrOrderNotPayable
	}
	o.Status = OrderStatusPaid
	o.UpdatedAt = now
	o.PaidAt = &now
	return nil
}

// References reports whether the order points at the given address.
func (o *Order) References(addressID int64) bool {
	return o.BillingAddressID == addressID || o.ShippingAddressID == addressID
}
