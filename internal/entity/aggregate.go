package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventRecord represents an event stored in the outbox.
type EventRecord struct {
	ID          string     `json:"id"`
	StreamID    string     `json:"stream_id"`
	StreamType  string     `json:"stream_type"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted when checkout creates an order.
type OrderPlaced struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PlacedAt    time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderPaid is emitted once payment and stock settlement committed together.
type OrderPaid struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAt      time.Time       `json:"paid_at"`
}

func (e OrderPaid) EventType() string { return "OrderPaid" }

// ProductStockUpdated is emitted when settlement changes product stock.
type ProductStockUpdated struct {
	ProductKey  string `json:"product_id"`
	OrderID     int64  `json:"order_id"`
	Quantity    int    `json:"quantity"`
	NewStock    int    `json:"new_stock"`
	Deactivated bool   `json:"deactivated"`
}

func (e ProductStockUpdated) EventType() string { return "ProductStockUpdated" }
