package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const productColumns = "id, product_key, name, slug, description, category, image, price, discount_price, stock, is_active, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p        entity.Product
		discount decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Image,
		&p.Price, &discount, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if discount.Valid {
		p.DiscountPrice = &discount.Decimal
	}
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO products (product_key, name, slug, description, category, image, price, discount_price, stock, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		p.Key, p.Name, p.Slug, p.Description, p.Category, p.Image, p.Price, nullDecimal(p.DiscountPrice), p.Stock, p.Active, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.Key, err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET name = $2, slug = $3, description = $4, category = $5, image = $6, price = $7,
		 discount_price = $8, stock = $9, is_active = $10, updated_at = $11 WHERE product_key = $1`,
		p.Key, p.Name, p.Slug, p.Description, p.Category, p.Image, p.Price, nullDecimal(p.DiscountPrice), p.Stock, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.Key, err)
	}
	return expectAffected(res)
}

func (r *productRepository) Delete(ctx context.Context, key string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM products WHERE product_key = $1", key)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", key, err)
	}
	return expectAffected(res)
}

func (r *productRepository) FindByKey(ctx context.Context, key string) (*entity.Product, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE product_key = $1", key)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", key, err)
	}
	return p, nil
}

func (r *productRepository) Find(ctx context.Context, q repository.ProductQuery) ([]entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if q.ActiveOnly {
		where = append(where, "is_active")
	}
	if q.DiscountedOnly {
		where = append(where, "discount_price IS NOT NULL AND discount_price < price")
	}
	if q.Term != "" {
		args = append(args, "%"+strings.ToLower(q.Term)+"%")
		where = append(where, fmt.Sprintf("(LOWER(slug) LIKE $%d OR LOWER(category) LIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch q.Sort {
	case repository.SortNewest:
		query += " ORDER BY created_at DESC, id DESC"
	case repository.SortLargestDiscount:
		query += " ORDER BY (price - COALESCE(LEAST(discount_price, price), price)) DESC, id"
	default:
		query += " ORDER BY name, id"
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, key string, quantity int) (*entity.Product, error) {
	// Compare-and-set: the row lock taken by UPDATE makes a concurrent
	// decrement re-check stock >= $1 against the committed value.
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`UPDATE products
		 SET stock = stock - $1,
		     is_active = CASE WHEN stock - $1 = 0 THEN FALSE ELSE is_active END,
		     updated_at = NOW()
		 WHERE product_key = $2 AND stock >= $1
		 RETURNING `+productColumns,
		quantity, key,
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update product stock: %w", err)
	}

	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE product_key = $1)", key,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product %s: %w", key, err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrInsufficientStock
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for i := range products {
		if err := r.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Key, err)
		}
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
