package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

const addressColumns = "id, user_id, firstname, lastname, street_name, city, postal_code, country, created_at"

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new AddressRepository backed by Postgres.
func NewAddressRepository(db *sql.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

func scanAddress(row rowScanner) (*entity.Address, error) {
	var a entity.Address
	if err := row.Scan(&a.ID, &a.UserID, &a.Firstname, &a.Lastname, &a.StreetName, &a.City, &a.PostalCode, &a.Country, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) Create(ctx context.Context, a *entity.Address) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO addresses (user_id, firstname, lastname, street_name, city, postal_code, country, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		a.UserID, a.Firstname, a.Lastname, a.StreetName, a.City, a.PostalCode, a.Country, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func (r *addressRepository) FindByID(ctx context.Context, id int64) (*entity.Address, error) {
	a, err := scanAddress(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+addressColumns+" FROM addresses WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query address %d: %w", id, err)
	}
	return a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Address, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT "+addressColumns+" FROM addresses WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM addresses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete address %d: %w", id, err)
	}
	return expectAffected(res)
}

const paymentMethodColumns = "id, user_id, type, provider, provider_payment_id, label, is_default"

type paymentMethodRepository struct {
	db *sql.DB
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository backed by Postgres.
func NewPaymentMethodRepository(db *sql.DB) repository.PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func scanPaymentMethod(row rowScanner) (*entity.PaymentMethod, error) {
	var p entity.PaymentMethod
	if err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.Provider, &p.ProviderPaymentID, &p.Label, &p.IsDefault); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentMethodRepository) Create(ctx context.Context, p *entity.PaymentMethod) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO payment_methods (user_id, type, provider, provider_payment_id, label, is_default)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.UserID, p.Type, p.Provider, p.ProviderPaymentID, p.Label, p.IsDefault,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) FindByID(ctx context.Context, id int64) (*entity.PaymentMethod, error) {
	p, err := scanPaymentMethod(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+paymentMethodColumns+" FROM payment_methods WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment method %d: %w", id, err)
	}
	return p, nil
}

func (r *paymentMethodRepository) ListByUser(ctx context.Context, userID int64) ([]entity.PaymentMethod, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT "+paymentMethodColumns+" FROM payment_methods WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	defer rows.Close()

	out := make([]entity.PaymentMethod, 0)
	for rows.Next() {
		p, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM payment_methods WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment method %d: %w", id, err)
	}
	return expectAffected(res)
}
