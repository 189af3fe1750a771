package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(7)
	p := f.newProduct(t, "Notebook", "4.50", 10)

	res, err := f.cart.AddItem(ctx, userID, p.Key, 2)
	require.NoError(t, err)
	assert.True(t, dec("9").Equal(res.Total))
	assert.True(t, dec("4.50").Equal(res.ProductPrice))
	assert.Equal(t, 2, res.Quantity)

	res, err = f.cart.AddItem(ctx, userID, p.Key, 3)
	require.NoError(t, err)
	assert.True(t, dec("22.50").Equal(res.Total))

	cart, err := f.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1, "same product merges into one line")
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.True(t, dec("22.50").Equal(cart.Lines[0].Price))
}

func TestCartService_AddItemUsesDiscountAndRepricesLine(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(7)
	discount := dec("8")
	p, err := f.catalog.Create(ctx, NewProduct{Name: "Pen", Category: "office", Price: dec("10"), DiscountPrice: &discount, Stock: 10})
	require.NoError(t, err)

	res, err := f.cart.AddItem(ctx, userID, p.Key, 1)
	require.NoError(t, err)
	assert.True(t, dec("8").Equal(res.ProductPrice))

	_, err = f.catalog.Update(ctx, p.Key, ProductPatch{ClearDiscount: true})
	require.NoError(t, err)

	res, err = f.cart.AddItem(ctx, userID, p.Key, 1)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(res.Total), "whole line repriced at the current price")
}

func TestCartService_AddItemErrors(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(7)
	inStock := f.newProduct(t, "Cup", "3", 4)
	soldOut := f.newProduct(t, "Plate", "3", 0)

	_, err := f.cart.AddItem(ctx, userID, inStock.Key, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.cart.AddItem(ctx, userID, "unknown", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.cart.AddItem(ctx, userID, soldOut.Key, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = f.cart.AddItem(ctx, userID, inStock.Key, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.cart.AddItem(ctx, userID, inStock.Key, 3)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, userID, inStock.Key, 2)
	require.ErrorIs(t, err, ErrInsufficientStock, "merged quantity exceeds stock")
	assert.Contains(t, err.Error(), `only 4 units of "Cup" are available in stock`)

	cart, err := f.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Quantity(inStock.Key), "failed add leaves the cart untouched")
}

func TestCartService_RemoveItem(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(7)
	p := f.newProduct(t, "Candle", "2.25", 10)

	_, err := f.cart.RemoveItem(ctx, userID, p.Key)
	assert.ErrorIs(t, err, ErrNotFound, "no cart yet")

	_, err = f.cart.AddItem(ctx, userID, p.Key, 2)
	require.NoError(t, err)

	total, err := f.cart.RemoveItem(ctx, userID, p.Key)
	require.NoError(t, err)
	assert.True(t, dec("2.25").Equal(total))

	total, err = f.cart.RemoveItem(ctx, userID, p.Key)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	cart, err := f.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	_, err = f.cart.RemoveItem(ctx, userID, p.Key)
	assert.ErrorIs(t, err, ErrNotFound, "line already gone")

	_, err = f.cart.RemoveItem(ctx, userID, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_ListItems(t *testing.T) {
	f := newFixture(t, OrderPolicySingle)
	ctx := context.Background()
	const userID = int64(7)

	items, err := f.cart.ListItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	a := f.newProduct(t, "Towel", "12", 5)
	b := f.newProduct(t, "Soap", "3", 5)
	_, err = f.cart.AddItem(ctx, userID, a.Key, 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, userID, b.Key, 2)
	require.NoError(t, err)

	items, err = f.cart.ListItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Towel", items[0].Name)
	assert.Equal(t, "general", items[0].Category)
	assert.Equal(t, 2, items[1].Quantity)
	assert.True(t, dec("6").Equal(items[1].Price))

	cached, err := f.cache.Get(ctx, b.Key)
	require.NoError(t, err, "display data is cached after the first read")
	assert.Equal(t, "Soap", cached.Name)

	require.NoError(t, f.catalog.Delete(ctx, a.Key))
	items, err = f.cart.ListItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Empty(t, items[0].Name, "deleted product keeps its line without display data")
}
