package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(NewStore())

	p := entity.Product{Key: "k1", Name: "A", Slug: "a", Price: decimal.NewFromInt(10), Stock: 5, Active: true}
	require.NoError(t, repo.Create(ctx, &p))
	assert.NotZero(t, p.ID)

	got, err := repo.FindByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	p.Name = "B"
	require.NoError(t, repo.Update(ctx, &p))

	require.NoError(t, repo.Delete(ctx, "k1"))
	_, err = repo.FindByKey(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &p), repository.ErrNotFound)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(NewStore())
	require.NoError(t, repo.Create(ctx, &entity.Product{Key: "k1", Stock: 3, Active: true}))

	p, err := repo.DecrementStock(ctx, "k1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
	assert.True(t, p.Active)

	_, err = repo.DecrementStock(ctx, "k1", 2)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	p, err = repo.DecrementStock(ctx, "k1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.Active)

	_, err = repo.DecrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(NewStore())
	discount := decimal.NewFromInt(50)
	require.NoError(t, repo.Create(ctx, &entity.Product{Key: "a", Name: "Aspirin", Slug: "aspirin", Category: "pharmacy", Price: decimal.NewFromInt(100), Stock: 1, Active: true}))
	require.NoError(t, repo.Create(ctx, &entity.Product{Key: "b", Name: "Lamp", Slug: "lamp", Category: "home", Price: decimal.NewFromInt(80), DiscountPrice: &discount, Stock: 1, Active: true}))
	require.NoError(t, repo.Create(ctx, &entity.Product{Key: "c", Name: "Chair", Slug: "chair", Category: "home", Price: decimal.NewFromInt(10), Stock: 0}))

	list, err := repo.Find(ctx, repository.ProductQuery{Term: "HOME", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Key)

	list, err = repo.Find(ctx, repository.ProductQuery{DiscountedOnly: true, Sort: repository.SortLargestDiscount})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.Find(ctx, repository.ProductQuery{Sort: repository.SortNewest, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tx := NewTxManager(store)
	products := NewProductRepository(store)
	outbox := NewOutbox(store)
	require.NoError(t, products.Create(ctx, &entity.Product{Key: "k1", Stock: 5, Active: true}))

	boom := errors.New("boom")
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := products.DecrementStock(ctx, "k1", 3); err != nil {
			return err
		}
		if err := outbox.Append(ctx, "1", "order", []entity.Event{entity.OrderPaid{OrderID: 1}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := products.FindByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	pending, err := outbox.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTxManager_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tx := NewTxManager(store)
	products := NewProductRepository(store)
	require.NoError(t, products.Create(ctx, &entity.Product{Key: "k1", Stock: 5, Active: true}))

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := products.DecrementStock(ctx, "k1", 3)
		return err
	})
	require.NoError(t, err)

	p, _ := products.FindByKey(context.Background(), "k1")
	assert.Equal(t, 2, p.Stock)
}

func TestCartRepository_SaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(NewStore())

	_, err := repo.FindByUser(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	c := &entity.Cart{UserID: 1, Lines: []entity.CartLine{{ProductKey: "k1", Quantity: 1}}}
	require.NoError(t, repo.Save(ctx, c))
	assert.NotZero(t, c.ID)
	assert.NotZero(t, c.Lines[0].ID)

	got, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	got.Lines[0].Quantity = 9

	again, _ := repo.FindByUser(ctx, 1)
	assert.Equal(t, 1, again.Lines[0].Quantity)
}

func TestOutbox_PendingAndMarkPublished(t *testing.T) {
	ctx := context.Background()
	ob := NewOutbox(NewStore())
	require.NoError(t, ob.Append(ctx, "1", "order", []entity.Event{
		entity.OrderPlaced{OrderID: 1},
		entity.OrderPaid{OrderID: 1},
	}))

	pending, err := ob.Pending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "OrderPlaced", pending[0].EventType)

	require.NoError(t, ob.MarkPublished(ctx, []string{pending[0].ID}))
	pending, err = ob.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "OrderPaid", pending[0].EventType)
}
