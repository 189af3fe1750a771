package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrOutOfStock        = errors.New("product is out of stock and cannot be added to the cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("order is already paid or cannot be processed")
	ErrDuplicateOrder    = errors.New("there is already an order for this user")
	ErrOversold          = errors.New("not enough stock left to settle the order")
	ErrProductMissing    = errors.New("a product of the order no longer exists")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrNoCart            = errors.New("no cart found for user")
	ErrEmptyCart         = errors.New("no products in cart")
	ErrInUse             = errors.New("still referenced by an order")
)
