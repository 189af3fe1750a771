package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUser(ctx context.Context, userID int64) (*entity.Cart, error) {
	q := conn(ctx, r.db)

	var c entity.Cart
	err := q.QueryRowContext(ctx,
		"SELECT id, user_id, total_price, updated_at FROM carts WHERE user_id = $1", userID,
	).Scan(&c.ID, &c.UserID, &c.Total, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart for user %d: %w", userID, err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, cart_id, product_key, quantity, product_price, added_at FROM cart_lines WHERE cart_id = $1 ORDER BY id", c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	c.Lines = make([]entity.CartLine, 0)
	for rows.Next() {
		var l entity.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductKey, &l.Quantity, &l.Price, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}
	return &c, nil
}

func (r *cartRepository) Save(ctx context.Context, c *entity.Cart) error {
	return NewTxManager(r.db).WithTransaction(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)

		err := q.QueryRowContext(ctx,
			`INSERT INTO carts (user_id, total_price, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE SET total_price = EXCLUDED.total_price, updated_at = EXCLUDED.updated_at
			 RETURNING id`,
			c.UserID, c.Total, c.UpdatedAt,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert cart: %w", err)
		}

		keys := make([]string, 0, len(c.Lines))
		for i := range c.Lines {
			l := &c.Lines[i]
			l.CartID = c.ID
			err := q.QueryRowContext(ctx,
				`INSERT INTO cart_lines (cart_id, product_key, quantity, product_price, added_at) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (cart_id, product_key) DO UPDATE SET quantity = EXCLUDED.quantity, product_price = EXCLUDED.product_price
				 RETURNING id`,
				c.ID, l.ProductKey, l.Quantity, l.Price, l.AddedAt,
			).Scan(&l.ID)
			if err != nil {
				return fmt.Errorf("failed to save cart line %s: %w", l.ProductKey, err)
			}
			keys = append(keys, l.ProductKey)
		}

		_, err = q.ExecContext(ctx,
			"DELETE FROM cart_lines WHERE cart_id = $1 AND NOT (product_key = ANY($2))",
			c.ID, pq.Array(keys),
		)
		if err != nil {
			return fmt.Errorf("failed to prune cart lines: %w", err)
		}
		return nil
	})
}
