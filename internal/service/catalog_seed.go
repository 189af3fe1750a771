package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
)

type seedProduct struct {
	name, description, category, image string
	price, discountPrice               string
	stock                              int
}

var defaultCatalog = []seedProduct{
	{"Wireless Noise-Cancelling Headphones", "Premium over-ear headphones with active noise cancellation and 30-hour battery life.", "Electronics", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400", "349.99", "299.99", 50},
	{"Mechanical Keyboard RGB", "Cherry MX switches with per-key RGB lighting and aluminum frame.", "Electronics", "https://images.unsplash.com/photo-1618384887929-16ec33fab9ef?w=400", "179.99", "", 120},
	{"Ultrawide Curved Monitor 34\"", "UWQHD 3440x1440 144Hz IPS panel with USB-C connectivity.", "Electronics", "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=400", "699.99", "649.99", 30},
	{"Ergonomic Office Chair", "Adjustable lumbar support, breathable mesh, and 4D armrests.", "Furniture", "https://images.unsplash.com/photo-1592078615290-033ee584e267?w=400", "549.99", "", 25},
	{"Smart LED Desk Lamp", "Adjustable color temperature, brightness levels, and USB charging port.", "Home", "https://images.unsplash.com/photo-1507473885765-e6ed057ab6fe?w=400", "89.99", "69.99", 200},
	{"Premium Laptop Backpack", "Water-resistant 17\" laptop compartment with anti-theft design.", "Accessories", "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400", "129.99", "", 80},
}

// seedNamespace derives stable product keys so reseeding a fresh store
// yields the same ids.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront/catalog"))

// SeedDefaults fills an empty catalog with the demo products. A catalog that
// already has products is left alone.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	now := time.Now().UTC()
	products := make([]entity.Product, 0, len(defaultCatalog))
	for _, sp := range defaultCatalog {
		slug := entity.Slugify(sp.name)
		p := entity.Product{
			Key:         uuid.NewSHA1(seedNamespace, []byte(slug)).String(),
			Name:        sp.name,
			Slug:        slug,
			Description: sp.description,
			Category:    sp.category,
			Image:       sp.image,
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
			Active:      sp.stock > 0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if sp.discountPrice != "" {
			d := decimal.RequireFromString(sp.discountPrice)
			p.DiscountPrice = &d
		}
		products = append(products, p)
	}

	if err := s.products.Seed(ctx, products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	s.logger.Info("catalog seeded", zap.Int("count", len(products)))
	return nil
}
