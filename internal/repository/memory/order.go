package memory

import (
	"context"
	"sort"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository creates an OrderRepository backed by store.
func NewOrderRepository(store *Store) repository.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	o.ID = r.store.nextID()
	r.store.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	o, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]entity.Order, 0)
	for _, o := range r.store.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *orderRepository) Update(ctx context.Context, o *entity.Order) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.store.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r *orderRepository) ReferencesAddress(ctx context.Context, addressID int64) (bool, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, o := range r.store.orders {
		if o.References(addressID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepository) ReferencesPaymentMethod(ctx context.Context, paymentMethodID int64) (bool, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, o := range r.store.orders {
		if o.PaymentMethodID == paymentMethodID {
			return true, nil
		}
	}
	return false, nil
}
