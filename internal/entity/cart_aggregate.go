package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewCart creates an empty cart for a user.
func NewCart(userID int64, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Total:     decimal.Zero,
		UpdatedAt: now,
	}
}

// Line returns the line holding productKey, or nil.
func (c *Cart) Line(productKey string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductKey == productKey {
			return &c.Lines[i]
		}
	}
	return nil
}

// Quantity returns how many units of productKey are already in the cart.
func (c *Cart) Quantity(productKey string) int {
	if l := c.Line(productKey); l != nil {
		return l.Quantity
	}
	return 0
}

// Merge adds quantity units of a product, creating the line if needed, and
// re-snapshots the line price from the current unit price.
func (c *Cart) Merge(productKey string, quantity int, unitPrice decimal.Decimal, now time.Time) *CartLine {
	l := c.Line(productKey)
	if l == nil {
		c.Lines = append(c.Lines, CartLine{
			CartID:     c.ID,
			ProductKey: productKey,
			AddedAt:    now,
		})
		l = &c.Lines[len(c.Lines)-1]
	}
	l.Quantity += quantity
	l.Price = unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	c.Recalculate(now)
	return l
}

// Decrement removes one unit of a product. The line is dropped when its last
// unit goes. It reports false when the cart has no such line.
func (c *Cart) Decrement(productKey string, unitPrice decimal.Decimal, now time.Time) bool {
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.ProductKey != productKey {
			continue
		}
		if l.Quantity > 1 {
			l.Quantity--
			l.Price = unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		} else {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		c.Recalculate(now)
		return true
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear(now time.Time) {
	c.Lines = nil
	c.Recalculate(now)
}

// Recalculate derives the total from the line snapshots. The stored total is
// never adjusted incrementally.
func (c *Cart) Recalculate(now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price)
	}
	c.Total = total
	c.UpdatedAt = now
	return total
}

// Snapshot copies the cart lines into order items.
func (c *Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, OrderItem{
			ProductKey: l.ProductKey,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	return items
}
