package repository

import (
	"context"
	"errors"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned by a conditional stock decrement that would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductSort selects the ordering of a product query.
type ProductSort int

const (
	SortByName ProductSort = iota
	SortNewest
	SortLargestDiscount
)

// ProductQuery filters and orders a product listing.
type ProductQuery struct {
	// Term matches slug or category, case-insensitive. Empty matches everything.
	Term       string
	ActiveOnly bool
	// DiscountedOnly keeps products whose discount price undercuts the price.
	DiscountedOnly bool
	Sort           ProductSort
	Limit          int
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, key string) error
	FindByKey(ctx context.Context, key string) (*entity.Product, error)
	Find(ctx context.Context, q ProductQuery) ([]entity.Product, error)
	// DecrementStock atomically subtracts quantity when enough stock is left,
	// switching the product off when it reaches zero. It returns ErrNotFound
	// or ErrInsufficientStock without touching the row otherwise.
	DecrementStock(ctx context.Context, key string, quantity int) (*entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// CartRepository handles persistence for the cart aggregate and its lines.
type CartRepository interface {
	FindByUser(ctx context.Context, userID int64) (*entity.Cart, error)
	// Save creates the cart when it has no id yet and replaces its lines and total.
	Save(ctx context.Context, c *entity.Cart) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	FindByID(ctx context.Context, id int64) (*entity.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	ReferencesAddress(ctx context.Context, addressID int64) (bool, error)
	ReferencesPaymentMethod(ctx context.Context, paymentMethodID int64) (bool, error)
}

// AddressRepository handles persistence for Addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *entity.Address) error
	FindByID(ctx context.Context, id int64) (*entity.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Address, error)
	Delete(ctx context.Context, id int64) error
}

// PaymentMethodRepository handles persistence for PaymentMethods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, p *entity.PaymentMethod) error
	FindByID(ctx context.Context, id int64) (*entity.PaymentMethod, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.PaymentMethod, error)
	Delete(ctx context.Context, id int64) error
}

// Outbox stores domain events next to the state change that produced them.
type Outbox interface {
	Append(ctx context.Context, streamID string, streamType string, events []entity.Event) error
	Pending(ctx context.Context, limit int) ([]entity.EventRecord, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// ProductDisplayCache keeps the display attributes of products. Get returns
// ErrNotFound on a miss.
type ProductDisplayCache interface {
	Get(ctx context.Context, key string) (*entity.ProductDisplay, error)
	Put(ctx context.Context, d entity.ProductDisplay) error
	Evict(ctx context.Context, key string) error
}

// TxManager runs fn inside one transaction. Repositories called with the
// context handed to fn take part in it; any error rolls everything back.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
