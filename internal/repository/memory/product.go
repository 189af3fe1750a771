package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type productRepository struct {
	store *Store
}

// NewProductRepository creates a ProductRepository backed by store.
func NewProductRepository(store *Store) repository.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	p.ID = r.store.nextID()
	r.store.products[p.Key] = *p
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.products[p.Key]; !ok {
		return repository.ErrNotFound
	}
	r.store.products[p.Key] = *p
	return nil
}

func (r *productRepository) Delete(ctx context.Context, key string) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.products[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.products, key)
	return nil
}

func (r *productRepository) FindByKey(ctx context.Context, key string) (*entity.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	p, ok := r.store.products[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepository) Find(ctx context.Context, q repository.ProductQuery) ([]entity.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)

	term := strings.ToLower(q.Term)
	out := make([]entity.Product, 0)
	for _, p := range r.store.products {
		if q.ActiveOnly && !p.Active {
			continue
		}
		if q.DiscountedOnly && p.Discount().IsZero() {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Slug), term) && !strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case repository.SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID > out[j].ID
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case repository.SortLargestDiscount:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].Discount(), out[j].Discount()
			if di.Equal(dj) {
				return out[i].ID < out[j].ID
			}
			return di.GreaterThan(dj)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Name == out[j].Name {
				return out[i].ID < out[j].ID
			}
			return out[i].Name < out[j].Name
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, key string, quantity int) (*entity.Product, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	p, ok := r.store.products[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Stock < quantity {
		return nil, repository.ErrInsufficientStock
	}
	p.SetStock(p.Stock - quantity)
	p.UpdatedAt = time.Now().UTC()
	r.store.products[key] = p
	return &p, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if len(r.store.products) > 0 {
		return nil // already seeded
	}
	for _, p := range products {
		p.ID = r.store.nextID()
		r.store.products[p.Key] = p
	}
	return nil
}
