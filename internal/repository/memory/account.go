package memory

import (
	"context"
	"sort"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type addressRepository struct {
	store *Store
}

// NewAddressRepository creates an AddressRepository backed by store.
func NewAddressRepository(store *Store) repository.AddressRepository {
	return &addressRepository{store: store}
}

func (r *addressRepository) Create(ctx context.Context, a *entity.Address) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	a.ID = r.store.nextID()
	r.store.addresses[a.ID] = *a
	return nil
}

func (r *addressRepository) FindByID(ctx context.Context, id int64) (*entity.Address, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	a, ok := r.store.addresses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Address, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]entity.Address, 0)
	for _, a := range r.store.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.addresses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.addresses, id)
	return nil
}

type paymentMethodRepository struct {
	store *Store
}

// NewPaymentMethodRepository creates a PaymentMethodRepository backed by store.
func NewPaymentMethodRepository(store *Store) repository.PaymentMethodRepository {
	return &paymentMethodRepository{store: store}
}

func (r *paymentMethodRepository) Create(ctx context.Context, p *entity.PaymentMethod) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	p.ID = r.store.nextID()
	r.store.payments[p.ID] = *p
	return nil
}

func (r *paymentMethodRepository) FindByID(ctx context.Context, id int64) (*entity.PaymentMethod, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	p, ok := r.store.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentMethodRepository) ListByUser(ctx context.Context, userID int64) ([]entity.PaymentMethod, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]entity.PaymentMethod, 0)
	for _, p := range r.store.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id int64) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.payments, id)
	return nil
}
