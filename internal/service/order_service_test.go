package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
)

func TestOrderService_PayDecrementsStock(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(1)
	p := f.newProduct(t, "Backpack", "45", 10)
	order := f.placeOrder(t, userID, p, 2)

	paid, err := f.settle.Pay(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	got := f.stockOf(t, p.Key)
	assert.Equal(t, 8, got.Stock)
	assert.True(t, got.Active)

	stored, err := f.settle.GetOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)

	cart, err := f.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Total.IsZero())

	assert.Equal(t, []string{"OrderPlaced", "OrderPaid", "ProductStockUpdated"}, pendingTypes(t, f.outbox))
}

func TestOrderService_PaySellsOut(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(1)
	p := f.newProduct(t, "Last Pair", "99", 2)
	order := f.placeOrder(t, userID, p, 2)

	_, err := f.settle.Pay(ctx, userID, order.ID)
	require.NoError(t, err)

	got := f.stockOf(t, p.Key)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.Active)

	pending, err := f.outbox.Pending(ctx, 0)
	require.NoError(t, err)
	var event entity.ProductStockUpdated
	require.NoError(t, json.Unmarshal(pending[len(pending)-1].Payload, &event))
	assert.Equal(t, p.Key, event.ProductKey)
	assert.Equal(t, 0, event.NewStock)
	assert.True(t, event.Deactivated)
}

func TestOrderService_PayTwice(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(1)
	p := f.newProduct(t, "Scarf", "15", 10)
	order := f.placeOrder(t, userID, p, 1)

	_, err := f.settle.Pay(ctx, userID, order.ID)
	require.NoError(t, err)
	_, err = f.settle.Pay(ctx, userID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 9, f.stockOf(t, p.Key).Stock)
}

func TestOrderService_PayForeignOrder(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	p := f.newProduct(t, "Scarf", "15", 10)
	order := f.placeOrder(t, 1, p, 1)

	_, err := f.settle.Pay(ctx, 2, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.settle.GetOrder(ctx, 2, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.settle.Pay(ctx, 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// assertRolledBack checks that a failed payment left no trace.
func assertRolledBack(t *testing.T, f *fixture, userID int64, order *entity.Order, stock map[string]int) {
	t.Helper()
	ctx := context.Background()

	stored, err := f.settle.GetOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusSetup, stored.Status)
	assert.Nil(t, stored.PaidAt)

	for key, want := range stock {
		p, err := f.products.FindByKey(ctx, key)
		if err != nil {
			continue
		}
		assert.Equal(t, want, p.Stock, key)
	}

	cart, err := f.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, len(order.Items), "cart kept")
	assert.Equal(t, []string{"OrderPlaced"}, pendingTypes(t, f.outbox))
}

func TestOrderService_PayRollsBackOnMissingProduct(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(1)
	first := f.newProduct(t, "Desk", "150", 5)
	second := f.newProduct(t, "Shelf", "60", 5)
	_, err := f.cart.AddItem(ctx, userID, first.Key, 1)
	require.NoError(t, err)
	order := f.placeOrder(t, userID, second, 1)

	require.NoError(t, f.catalog.Delete(ctx, second.Key))

	_, err = f.settle.Pay(ctx, userID, order.ID)
	require.ErrorIs(t, err, ErrProductMissing)
	assertRolledBack(t, f, userID, order, map[string]int{first.Key: 5})
}

func TestOrderService_PayRollsBackOnOversold(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(1)
	first := f.newProduct(t, "Desk", "150", 5)
	second := f.newProduct(t, "Shelf", "60", 5)
	_, err := f.cart.AddItem(ctx, userID, first.Key, 2)
	require.NoError(t, err)
	order := f.placeOrder(t, userID, second, 3)

	one := 1
	_, err = f.catalog.SetStatus(ctx, second.Key, &one, nil)
	require.NoError(t, err)

	_, err = f.settle.Pay(ctx, userID, order.ID)
	require.ErrorIs(t, err, ErrOversold)
	assertRolledBack(t, f, userID, order, map[string]int{first.Key: 5, second.Key: 1})
}

func TestOrderService_ConcurrentPayNeverOversells(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	p := f.newProduct(t, "Limited Print", "300", 3)

	users := []int64{1, 2}
	orders := make([]*entity.Order, len(users))
	for i, userID := range users {
		orders[i] = f.placeOrder(t, userID, p, 2)
	}

	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = f.settle.Pay(ctx, userID, orders[i].ID)
		}(i, userID)
	}
	wg.Wait()

	var paid, oversold int
	for _, err := range errs {
		switch {
		case err == nil:
			paid++
		case assert.ErrorIs(t, err, ErrOversold):
			oversold++
		}
	}
	assert.Equal(t, 1, paid)
	assert.Equal(t, 1, oversold)

	got := f.stockOf(t, p.Key)
	assert.Equal(t, 1, got.Stock)
	assert.True(t, got.Active)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	p := f.newProduct(t, "Vase", "35", 5)
	order := f.placeOrder(t, 1, p, 1)

	orders, err := f.settle.ListOrders(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	orders, err = f.settle.ListOrders(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
