package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the store.
type Product struct {
	ID            int64            `json:"id"`
	Key           string           `json:"productId"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock"`
	Active        bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ProductDisplay is the subset of a product shown next to a cart line.
type ProductDisplay struct {
	Key      string `json:"productId"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// Cart is the per-user shopping cart aggregate.
type Cart struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CartLine is one product entry within a cart.
type CartLine struct {
	ID         int64           `json:"id"`
	CartID     int64           `json:"-"`
	ProductKey string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"productPrice"`
	AddedAt    time.Time       `json:"addedAt"`
}

// OrderStatus is the settlement state of an order.
type OrderStatus string

const (
	OrderStatusSetup OrderStatus = "setup"
	OrderStatusPaid  OrderStatus = "paid"
)

// OrderItem is the snapshot of a cart line taken at checkout.
type OrderItem struct {
	ProductKey string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"productPrice"`
}

// Order represents a customer order.
type Order struct {
	ID                int64           `json:"orderId"`
	UserID            int64           `json:"userId"`
	CartID            int64           `json:"cartId"`
	BillingAddressID  int64           `json:"billingAddress"`
	ShippingAddressID int64           `json:"shippingAddress"`
	PaymentMethodID   int64           `json:"paymentMethod"`
	Items             []OrderItem     `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            OrderStatus     `json:"orderStatus"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
}

// Address is a billing or shipping address owned by a user.
type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	StreetName string    `json:"streetName"`
	City       string    `json:"city"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaymentType enumerates the accepted payment method kinds.
type PaymentType string

const (
	PaymentPayPal       PaymentType = "paypal"
	PaymentGoogle       PaymentType = "google"
	PaymentCreditCard   PaymentType = "credit_card"
	PaymentApple        PaymentType = "apple"
	PaymentBankTransfer PaymentType = "bank_transfer"
)

// Valid reports whether t is one of the known payment types.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentPayPal, PaymentGoogle, PaymentCreditCard, PaymentApple, PaymentBankTransfer:
		return true
	}
	return false
}

// PaymentMethod is a stored payment instrument owned by a user.
type PaymentMethod struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"-"`
	Type              PaymentType `json:"type"`
	Provider          string      `json:"provider"`
	ProviderPaymentID string      `json:"-"`
	Label             string      `json:"label"`
	IsDefault         bool        `json:"isDefault"`
}
