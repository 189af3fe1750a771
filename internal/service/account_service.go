package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

// NewAddress is the input for storing an address.
type NewAddress struct {
	Firstname  string
	Lastname   string
	StreetName string
	City       string
	PostalCode string
	Country    string
}

// NewPaymentMethod is the input for storing a payment method.
type NewPaymentMethod struct {
	ProviderPaymentID string
	Type              entity.PaymentType
	Provider          string
	// Brand and Last4 label credit cards, PayerName labels PayPal accounts.
	Brand     string
	Last4     string
	PayerName string
	IsDefault bool
}

// AccountService manages the addresses and payment methods of a user.
type AccountService struct {
	addresses repository.AddressRepository
	payments  repository.PaymentMethodRepository
	orders    repository.OrderRepository
	tx        repository.TxManager
	logger    *zap.Logger
}

func NewAccountService(
	addresses repository.AddressRepository,
	payments repository.PaymentMethodRepository,
	orders repository.OrderRepository,
	tx repository.TxManager,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		addresses: addresses,
		payments:  payments,
		orders:    orders,
		tx:        tx,
		logger:    logger,
	}
}

func (s *AccountService) AddAddress(ctx context.Context, userID int64, in NewAddress) (*entity.Address, error) {
	a := &entity.Address{
		UserID:     userID,
		Firstname:  strings.TrimSpace(in.Firstname),
		Lastname:   strings.TrimSpace(in.Lastname),
		StreetName: strings.TrimSpace(in.StreetName),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		CreatedAt:  time.Now().UTC(),
	}

	var missing []string
	for field, value := range map[string]string{
		"firstname":  a.Firstname,
		"lastname":   a.Lastname,
		"streetName": a.StreetName,
		"city":       a.City,
		"postalCode": a.PostalCode,
		"country":    a.Country,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if err := s.addresses.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	s.logger.Info("address created", zap.Int64("user_id", userID), zap.Int64("address_id", a.ID))
	return a, nil
}

// DeleteAddress removes one of the user's addresses unless an order still points at it.
func (s *AccountService) DeleteAddress(ctx context.Context, userID, addressID int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := s.addresses.FindByID(ctx, addressID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: address not found", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load address: %w", err)
		}
		if a.UserID != userID {
			return fmt.Errorf("%w: you are not allowed to access this address", ErrForbidden)
		}

		used, err := s.orders.ReferencesAddress(ctx, addressID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: address %d", ErrInUse, addressID)
		}

		if err := s.addresses.Delete(ctx, addressID); err != nil {
			return fmt.Errorf("failed to delete address: %w", err)
		}
		s.logger.Info("address deleted", zap.Int64("user_id", userID), zap.Int64("address_id", addressID))
		return nil
	})
}

func (s *AccountService) AddPaymentMethod(ctx context.Context, userID int64, in NewPaymentMethod) (*entity.PaymentMethod, error) {
	if in.ProviderPaymentID == "" || in.Type == "" || in.Provider == "" {
		return nil, fmt.Errorf("%w: incomplete payment data", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, in.Type)
	}

	p := &entity.PaymentMethod{
		UserID:            userID,
		Type:              in.Type,
		Provider:          in.Provider,
		ProviderPaymentID: in.ProviderPaymentID,
		IsDefault:         in.IsDefault,
	}
	switch in.Type {
	case entity.PaymentCreditCard:
		p.Label = in.Brand + " •••• " + in.Last4
	case entity.PaymentPayPal:
		p.Label = "PayPal " + in.PayerName
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}
	s.logger.Info("payment method created",
		zap.Int64("user_id", userID),
		zap.Int64("payment_method_id", p.ID),
		zap.String("type", string(p.Type)))
	return p, nil
}

// DeletePaymentMethod removes one of the user's payment methods unless an order still points at it.
func (s *AccountService) DeletePaymentMethod(ctx context.Context, userID, paymentMethodID int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payments.FindByID(ctx, paymentMethodID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: payment not found", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load payment method: %w", err)
		}
		if p.UserID != userID {
			return fmt.Errorf("%w: you are not allowed to access this payment", ErrForbidden)
		}

		used, err := s.orders.ReferencesPaymentMethod(ctx, paymentMethodID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: payment method %d", ErrInUse, paymentMethodID)
		}

		if err := s.payments.Delete(ctx, paymentMethodID); err != nil {
			return fmt.Errorf("failed to delete payment method: %w", err)
		}
		s.logger.Info("payment method deleted", zap.Int64("user_id", userID), zap.Int64("payment_method_id", paymentMethodID))
		return nil
	})
}
