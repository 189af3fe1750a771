package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository/memory"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/service"
)

var featureErrors = map[string]error{
	"oversold":        service.ErrOversold,
	"product missing": service.ErrProductMissing,
	"invalid state":   service.ErrInvalidState,
	"no cart":         service.ErrNoCart,
	"empty cart":      service.ErrEmptyCart,
	"duplicate order": service.ErrDuplicateOrder,
}

type storefrontTestContext struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	catalog  *service.CatalogService
	cart     *service.CartService
	accounts *service.AccountService
	checkout *service.CheckoutService
	orders   *service.OrderService

	keys    map[string]string
	orderOf map[int64]int64
	err     error
}

func (c *storefrontTestContext) reset() {
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	logger := zap.NewNop()
	cache := memory.NewDisplayCache()
	orders := memory.NewOrderRepository(store)
	addresses := memory.NewAddressRepository(store)
	payments := memory.NewPaymentMethodRepository(store)
	outbox := memory.NewOutbox(store)

	c.products = memory.NewProductRepository(store)
	c.carts = memory.NewCartRepository(store)
	c.catalog = service.NewCatalogService(c.products, cache, logger)
	c.cart = service.NewCartService(c.carts, c.products, cache, tx, logger)
	c.accounts = service.NewAccountService(addresses, payments, orders, tx, logger)
	c.checkout = service.NewCheckoutService(c.carts, orders, addresses, payments, outbox, tx, service.OrderPolicySingle, logger)
	c.orders = service.NewOrderService(orders, c.products, c.carts, outbox, tx, logger)
	c.keys = make(map[string]string)
	c.orderOf = make(map[int64]int64)
	c.err = nil
}

func (c *storefrontTestContext) aProductPricedWithStock(name, price string, stock int) error {
	p, err := c.catalog.Create(context.Background(), service.NewProduct{
		Name:     name,
		Category: "furniture",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	})
	if err != nil {
		return err
	}
	c.keys[name] = p.Key
	return nil
}

func (c *storefrontTestContext) userHasInTheCart(userID int64, qty int, name string) error {
	_, err := c.cart.AddItem(context.Background(), userID, c.keys[name], qty)
	return err
}

func (c *storefrontTestContext) checkOut(userID int64) error {
	ctx := context.Background()
	a, err := c.accounts.AddAddress(ctx, userID, service.NewAddress{
		Firstname: "Jan", Lastname: "Jansen", StreetName: "Dorfstraße 3",
		City: "Bremen", PostalCode: "28195", Country: "DE",
	})
	if err != nil {
		return err
	}
	p, err := c.accounts.AddPaymentMethod(ctx, userID, service.NewPaymentMethod{
		ProviderPaymentID: "pp_1", Type: entity.PaymentPayPal, Provider: "paypal", PayerName: "Jan Jansen",
	})
	if err != nil {
		return err
	}
	o, err := c.checkout.SetCheckoutData(ctx, userID, a.ID, a.ID, p.ID)
	if err != nil {
		return err
	}
	c.orderOf[userID] = o.ID
	return nil
}

func (c *storefrontTestContext) userHasCheckedOut(userID int64) error {
	return c.checkOut(userID)
}

func (c *storefrontTestContext) userChecksOut(userID int64) error {
	c.err = c.checkOut(userID)
	return nil
}

func (c *storefrontTestContext) theStockOfIsSetTo(name string, stock int) error {
	_, err := c.catalog.SetStatus(context.Background(), c.keys[name], &stock, nil)
	return err
}

func (c *storefrontTestContext) isDeletedFromTheCatalog(name string) error {
	return c.catalog.Delete(context.Background(), c.keys[name])
}

func (c *storefrontTestContext) userPaysTheOrder(userID int64) error {
	_, c.err = c.orders.Pay(context.Background(), userID, c.orderOf[userID])
	return nil
}

func (c *storefrontTestContext) thePaymentSucceeds() error {
	return c.err
}

func (c *storefrontTestContext) theOperationFailsWith(kind string) error {
	want, ok := featureErrors[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected %q error, got %v", kind, c.err)
	}
	return nil
}

func (c *storefrontTestContext) product(name string) (*entity.Product, error) {
	return c.products.FindByKey(context.Background(), c.keys[name])
}

func (c *storefrontTestContext) theStockOfIs(name string, stock int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if p.Stock != stock {
		return fmt.Errorf("expected stock %d of %s, got %d", stock, name, p.Stock)
	}
	return nil
}

func (c *storefrontTestContext) productIs(name, state string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if p.Active != (state == "active") {
		return fmt.Errorf("expected %s to be %s", name, state)
	}
	return nil
}

func (c *storefrontTestContext) theOrderOfUserIs(userID int64, status string) error {
	o, err := c.orders.GetOrder(context.Background(), userID, c.orderOf[userID])
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected order status %q, got %q", status, o.Status)
	}
	return nil
}

func (c *storefrontTestContext) theCartOfUserHoldsLines(userID int64, lines int) error {
	cart, err := c.carts.FindByUser(context.Background(), userID)
	if err != nil {
		return err
	}
	if len(cart.Lines) != lines {
		return fmt.Errorf("expected %d cart lines, got %d", lines, len(cart.Lines))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced (\d+(?:\.\d+)?) with stock (\d+)$`, tc.aProductPricedWithStock)
	ctx.Step(`^user (\d+) has (\d+) "([^"]*)" in the cart$`, tc.userHasInTheCart)
	ctx.Step(`^user (\d+) has checked out$`, tc.userHasCheckedOut)
	ctx.Step(`^the stock of "([^"]*)" is set to (\d+)$`, tc.theStockOfIsSetTo)
	ctx.Step(`^"([^"]*)" is deleted from the catalog$`, tc.isDeletedFromTheCatalog)

	// When steps
	ctx.Step(`^user (\d+) pays the order$`, tc.userPaysTheOrder)
	ctx.Step(`^user (\d+) checks out$`, tc.userChecksOut)

	// Then steps
	ctx.Step(`^the payment succeeds$`, tc.thePaymentSucceeds)
	ctx.Step(`^the (?:payment|checkout) fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^"([^"]*)" is (active|inactive)$`, tc.productIs)
	ctx.Step(`^the order of user (\d+) is "([^"]*)"$`, tc.theOrderOfUserIs)
	ctx.Step(`^the cart of user (\d+) holds (\d+) lines?$`, tc.theCartOfUserHoldsLines)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/settlement.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
