package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository/memory"
)

type fixture struct {
	products  repository.ProductRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	payments  repository.PaymentMethodRepository
	outbox    repository.Outbox
	cache     *memory.DisplayCache

	catalog  *CatalogService
	cart     *CartService
	accounts *AccountService
	checkout *CheckoutService
	settle   *OrderService
}

func newFixture(t *testing.T, policy OrderPolicy) *fixture {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	logger := zap.NewNop()

	f := &fixture{
		products:  memory.NewProductRepository(store),
		carts:     memory.NewCartRepository(store),
		orders:    memory.NewOrderRepository(store),
		addresses: memory.NewAddressRepository(store),
		payments:  memory.NewPaymentMethodRepository(store),
		outbox:    memory.NewOutbox(store),
		cache:     memory.NewDisplayCache(),
	}
	f.catalog = NewCatalogService(f.products, f.cache, logger)
	f.cart = NewCartService(f.carts, f.products, f.cache, tx, logger)
	f.accounts = NewAccountService(f.addresses, f.payments, f.orders, tx, logger)
	f.checkout = NewCheckoutService(f.carts, f.orders, f.addresses, f.payments, f.outbox, tx, policy, logger)
	f.settle = NewOrderService(f.orders, f.products, f.carts, f.outbox, tx, logger)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) newProduct(t *testing.T, name, price string, stock int) *entity.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), NewProduct{
		Name:     name,
		Category: "general",
		Price:    dec(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, key string) *entity.Product {
	t.Helper()
	p, err := f.products.FindByKey(context.Background(), key)
	require.NoError(t, err)
	return p
}

// checkoutData gives userID two addresses and a credit card.
type checkoutData struct {
	billing, shipping, payment int64
}

func (f *fixture) newCheckoutData(t *testing.T, userID int64) checkoutData {
	t.Helper()
	ctx := context.Background()
	addr := NewAddress{
		Firstname:  "Erika",
		Lastname:   "Mustermann",
		StreetName: "Hauptstraße 1",
		City:       "Berlin",
		PostalCode: "10115",
		Country:    "DE",
	}
	billing, err := f.accounts.AddAddress(ctx, userID, addr)
	require.NoError(t, err)
	shipping, err := f.accounts.AddAddress(ctx, userID, addr)
	require.NoError(t, err)
	payment, err := f.accounts.AddPaymentMethod(ctx, userID, NewPaymentMethod{
		ProviderPaymentID: "pm_1",
		Type:              entity.PaymentCreditCard,
		Provider:          "stripe",
		Brand:             "visa",
		Last4:             "4242",
	})
	require.NoError(t, err)
	return checkoutData{billing: billing.ID, shipping: shipping.ID, payment: payment.ID}
}

// placeOrder fills the cart with qty units of p and checks out.
func (f *fixture) placeOrder(t *testing.T, userID int64, p *entity.Product, qty int) *entity.Order {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, userID, p.Key, qty)
	require.NoError(t, err)
	cd := f.newCheckoutData(t, userID)
	o, err := f.checkout.SetCheckoutData(ctx, userID, cd.billing, cd.shipping, cd.payment)
	require.NoError(t, err)
	return o
}

func pendingTypes(t *testing.T, outbox repository.Outbox) []string {
	t.Helper()
	pending, err := outbox.Pending(context.Background(), 0)
	require.NoError(t, err)
	types := make([]string, 0, len(pending))
	for _, rec := range pending {
		types = append(types, rec.EventType)
	}
	return types
}
