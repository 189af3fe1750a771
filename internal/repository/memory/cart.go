package memory

import (
	"context"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type cartRepository struct {
	store *Store
}

// NewCartRepository creates a CartRepository backed by store.
func NewCartRepository(store *Store) repository.CartRepository {
	return &cartRepository{store: store}
}

func (r *cartRepository) FindByUser(ctx context.Context, userID int64) (*entity.Cart, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	c, ok := r.store.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = copyCart(c)
	return &c, nil
}

func (r *cartRepository) Save(ctx context.Context, c *entity.Cart) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if c.ID == 0 {
		c.ID = r.store.nextID()
	}
	for i := range c.Lines {
		c.Lines[i].CartID = c.ID
		if c.Lines[i].ID == 0 {
			c.Lines[i].ID = r.store.nextID()
		}
	}
	r.store.carts[c.UserID] = copyCart(*c)
	return nil
}
