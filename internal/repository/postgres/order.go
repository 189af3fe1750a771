package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const orderColumns = "id, user_id, cart_id, billing_address_id, shipping_address_id, payment_method_id, total_amount, status, created_at, updated_at, paid_at"

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o      entity.Order
		paidAt sql.NullTime
	)
	err := row.Scan(&o.ID, &o.UserID, &o.CartID, &o.BillingAddressID, &o.ShippingAddressID, &o.PaymentMethodID,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order) error {
	return NewTxManager(r.db).WithTransaction(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		err := q.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, cart_id, billing_address_id, shipping_address_id, payment_method_id, total_amount, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			o.UserID, o.CartID, o.BillingAddressID, o.ShippingAddressID, o.PaymentMethodID, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt,
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, item := range o.Items {
			_, err = q.ExecContext(ctx,
				"INSERT INTO order_items (order_id, product_key, quantity, product_price) VALUES ($1, $2, $3, $4)",
				o.ID, item.ProductKey, item.Quantity, item.Price,
			)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %d: %w", id, err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	rows.Close()

	// Fetch items for each order
	for i := range orders {
		if orders[i].Items, err = r.items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) items(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT product_key, quantity, product_price FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make([]entity.OrderItem, 0)
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductKey, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) Update(ctx context.Context, o *entity.Order) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET billing_address_id = $2, shipping_address_id = $3, payment_method_id = $4,
		 total_amount = $5, status = $6, updated_at = $7, paid_at = $8 WHERE id = $1`,
		o.ID, o.BillingAddressID, o.ShippingAddressID, o.PaymentMethodID, o.TotalAmount, o.Status, o.UpdatedAt, o.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", o.ID, err)
	}
	return expectAffected(res)
}

func (r *orderRepository) ReferencesAddress(ctx context.Context, addressID int64) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM orders WHERE billing_address_id = $1 OR shipping_address_id = $1)", addressID)
}

func (r *orderRepository) ReferencesPaymentMethod(ctx context.Context, paymentMethodID int64) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM orders WHERE payment_method_id = $1)", paymentMethodID)
}

func (r *orderRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check order references: %w", err)
	}
	return found, nil
}
