package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const (
	defaultSearchLimit = 20
	dashboardSize      = 4
)

// NewProduct is the input for creating a catalog entry.
type NewProduct struct {
	Name          string
	Description   string
	Category      string
	Image         string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
}

// ProductPatch carries the fields of a partial product update. Nil fields are left alone.
type ProductPatch struct {
	Name          *string
	Description   *string
	Category      *string
	Image         *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	// ClearDiscount removes the discount price.
	ClearDiscount bool
	Stock         *int
	Active        *bool
}

// CatalogService manages products.
type CatalogService struct {
	products repository.ProductRepository
	cache    repository.ProductDisplayCache
	logger   *zap.Logger
}

func NewCatalogService(products repository.ProductRepository, cache repository.ProductDisplayCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, logger: logger}
}

// Create validates and stores a new product. The product starts active when it has stock.
func (s *CatalogService) Create(ctx context.Context, in NewProduct) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Category) == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidInput)
	}
	if in.Price.IsNegative() || (in.DiscountPrice != nil && in.DiscountPrice.IsNegative()) {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}

	now := time.Now().UTC()
	p := &entity.Product{
		Key:           uuid.NewString(),
		Name:          name,
		Slug:          entity.Slugify(name),
		Description:   in.Description,
		Category:      strings.TrimSpace(in.Category),
		Image:         in.Image,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Active:        in.Stock >= 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created", zap.String("product_key", p.Key), zap.Int("stock", p.Stock))
	return p, nil
}

// Update applies a partial update to a product.
func (s *CatalogService) Update(ctx context.Context, key string, patch ProductPatch) (*entity.Product, error) {
	p, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		p.Name = name
		p.Slug = entity.Slugify(name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		p.Price = *patch.Price
	}
	switch {
	case patch.ClearDiscount:
		p.DiscountPrice = nil
	case patch.DiscountPrice != nil:
		if patch.DiscountPrice.IsNegative() {
			return nil, fmt.Errorf("%w: discount price must not be negative", ErrInvalidInput)
		}
		p.DiscountPrice = patch.DiscountPrice
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
		}
		p.SetStock(*patch.Stock)
	}
	if patch.Active != nil {
		if err := p.SetActive(*patch.Active); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStatus is the admin stock and activation switch. A stock of zero or
// less always switches the product off.
func (s *CatalogService) SetStatus(ctx context.Context, key string, stock *int, active *bool) (*entity.Product, error) {
	p, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if stock != nil {
		p.SetStock(*stock)
	}
	if active != nil {
		if err := p.SetActive(*active); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, key string) error {
	if err := s.products.Delete(ctx, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.evict(ctx, key)
	s.logger.Info("product deleted", zap.String("product_key", key))
	return nil
}

// Get returns an active product. Inactive products are hidden from the public.
func (s *CatalogService) Get(ctx context.Context, key string) (*entity.Product, error) {
	p, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, key)
	}
	return p, nil
}

// Search finds active products whose slug or category contains query, newest first.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	products, err := s.products.Find(ctx, repository.ProductQuery{
		Term:       query,
		ActiveOnly: true,
		Sort:       repository.SortNewest,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Dashboard returns the newest active products followed by the best
// discounted ones, each product at most once.
func (s *CatalogService) Dashboard(ctx context.Context) ([]entity.Product, error) {
	newest, err := s.products.Find(ctx, repository.ProductQuery{
		ActiveOnly: true,
		Sort:       repository.SortNewest,
		Limit:      dashboardSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load newest products: %w", err)
	}
	discounted, err := s.products.Find(ctx, repository.ProductQuery{
		ActiveOnly:     true,
		DiscountedOnly: true,
		Sort:           repository.SortLargestDiscount,
		Limit:          dashboardSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load discounted products: %w", err)
	}

	seen := make(map[string]struct{}, len(newest)+len(discounted))
	out := make([]entity.Product, 0, len(newest)+len(discounted))
	for _, p := range append(newest, discounted...) {
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func (s *CatalogService) find(ctx context.Context, key string) (*entity.Product, error) {
	p, err := s.products.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) save(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.evict(ctx, p.Key)
	s.logger.Info("product updated",
		zap.String("product_key", p.Key),
		zap.Int("stock", p.Stock),
		zap.Bool("active", p.Active))
	return nil
}

// evict drops the cached display entry. A stale entry only affects cart
// display, so failures are logged.
func (s *CatalogService) evict(ctx context.Context, key string) {
	if err := s.cache.Evict(ctx, key); err != nil {
		s.logger.Warn("failed to evict product display", zap.String("product_key", key), zap.Error(err))
	}
}
