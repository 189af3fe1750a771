package memory

import (
	"context"
	"sync"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
)

// Store is the shared in-memory state behind every memory repository.
type Store struct {
	mu sync.RWMutex

	seq int64

	products  map[string]entity.Product
	carts     map[int64]entity.Cart // by user
	orders    map[int64]entity.Order
	addresses map[int64]entity.Address
	payments  map[int64]entity.PaymentMethod
	outbox    []entity.EventRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		carts:     make(map[int64]entity.Cart),
		orders:    make(map[int64]entity.Order),
		addresses: make(map[int64]entity.Address),
		payments:  make(map[int64]entity.PaymentMethod),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// transaction-aware locking helpers
type txKey struct{}

func inTx(ctx context.Context) bool {
	b, ok := ctx.Value(txKey{}).(bool)
	return ok && b
}

func (s *Store) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}

func (s *Store) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}

func (s *Store) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}

func (s *Store) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

type snapshot struct {
	seq       int64
	products  map[string]entity.Product
	carts     map[int64]entity.Cart
	orders    map[int64]entity.Order
	addresses map[int64]entity.Address
	payments  map[int64]entity.PaymentMethod
	outbox    []entity.EventRecord
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		seq:       s.seq,
		products:  make(map[string]entity.Product, len(s.products)),
		carts:     make(map[int64]entity.Cart, len(s.carts)),
		orders:    make(map[int64]entity.Order, len(s.orders)),
		addresses: make(map[int64]entity.Address, len(s.addresses)),
		payments:  make(map[int64]entity.PaymentMethod, len(s.payments)),
		outbox:    append([]entity.EventRecord(nil), s.outbox...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = copyCart(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	for k, v := range s.addresses {
		snap.addresses[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.seq = snap.seq
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.addresses = snap.addresses
	s.payments = snap.payments
	s.outbox = snap.outbox
}

func copyCart(c entity.Cart) entity.Cart {
	c.Lines = append([]entity.CartLine(nil), c.Lines...)
	return c
}

func copyOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return o
}

// TxManager serialises transactions on the store write lock and restores the
// pre-transaction state when fn fails.
type TxManager struct{ store *Store }

// NewTxManager creates a TxManager over store.
func NewTxManager(store *Store) *TxManager { return &TxManager{store: store} }

func (tx *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	snap := tx.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}
