package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

// AddItemResult describes the cart after an item was added.
type AddItemResult struct {
	Total decimal.Decimal
	// ProductPrice is the unit final price the line was priced with.
	ProductPrice decimal.Decimal
	ProductKey   string
	Quantity     int
}

// CartItem is a cart line enriched with the product's display attributes.
type CartItem struct {
	entity.CartLine
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// CartService orchestrates shopping cart logic.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    repository.ProductDisplayCache
	tx       repository.TxManager
	logger   *zap.Logger
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	cache repository.ProductDisplayCache,
	tx repository.TxManager,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cache,
		tx:       tx,
		logger:   logger,
	}
}

// AddItem puts quantity units of a product into the user's cart, creating the
// cart on first use.
func (s *CartService) AddItem(ctx context.Context, userID int64, productKey string, quantity int) (*AddItemResult, error) {
	if productKey == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	var result *AddItemResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		product, err := s.product(ctx, productKey)
		if err != nil {
			return err
		}
		if product.Stock < 1 {
			return ErrOutOfStock
		}

		cart, err := s.cart(ctx, userID)
		if errors.Is(err, ErrNoCart) {
			cart = entity.NewCart(userID, time.Now().UTC())
		} else if err != nil {
			return err
		}

		if cart.Quantity(productKey)+quantity > product.Stock {
			return fmt.Errorf("%w: only %d units of %q are available in stock",
				ErrInsufficientStock, product.Stock, product.Name)
		}

		unitPrice := product.FinalPrice()
		cart.Merge(productKey, quantity, unitPrice, time.Now().UTC())
		if err := s.carts.Save(ctx, cart); err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}

		result = &AddItemResult{
			Total:        cart.Total,
			ProductPrice: unitPrice,
			ProductKey:   productKey,
			Quantity:     quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item added to cart",
		zap.Int64("user_id", userID),
		zap.String("product_key", productKey),
		zap.Int("quantity", quantity),
		zap.Stringer("total", result.Total))
	return result, nil
}

// RemoveItem takes one unit of a product out of the user's cart and returns the new total.
func (s *CartService) RemoveItem(ctx context.Context, userID int64, productKey string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		product, err := s.product(ctx, productKey)
		if err != nil {
			return err
		}

		cart, err := s.cart(ctx, userID)
		if errors.Is(err, ErrNoCart) {
			return fmt.Errorf("%w: cart not found", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !cart.Decrement(productKey, product.FinalPrice(), time.Now().UTC()) {
			return fmt.Errorf("%w: product not found in cart", ErrNotFound)
		}
		if err := s.carts.Save(ctx, cart); err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}
		total = cart.Total
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("item removed from cart",
		zap.Int64("user_id", userID),
		zap.String("product_key", productKey),
		zap.Stringer("total", total))
	return total, nil
}

// ListItems returns the user's cart lines with current product display data.
// A user without a cart has no items.
func (s *CartService) ListItems(ctx context.Context, userID int64) ([]CartItem, error) {
	cart, err := s.cart(ctx, userID)
	if errors.Is(err, ErrNoCart) {
		return []CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]CartItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item := CartItem{CartLine: line}
		d, err := s.display(ctx, line.ProductKey)
		if err != nil {
			return nil, err
		}
		if d != nil {
			item.Name, item.Image, item.Category = d.Name, d.Image, d.Category
		}
		items = append(items, item)
	}
	return items, nil
}

// display reads the product display attributes through the cache. It returns
// nil for a product that no longer exists.
func (s *CartService) display(ctx context.Context, key string) (*entity.ProductDisplay, error) {
	d, err := s.cache.Get(ctx, key)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("product display cache read failed", zap.String("product_key", key), zap.Error(err))
	}

	p, err := s.products.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", key, err)
	}

	fresh := p.Display()
	if err := s.cache.Put(ctx, fresh); err != nil {
		s.logger.Warn("product display cache write failed", zap.String("product_key", key), zap.Error(err))
	}
	return &fresh, nil
}

func (s *CartService) product(ctx context.Context, key string) (*entity.Product, error) {
	p, err := s.products.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return p, nil
}

// cart loads the user's cart, reporting ErrNoCart when there is none.
func (s *CartService) cart(ctx context.Context, userID int64) (*entity.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}
