package entity

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrActivateWithoutStock is returned when a product with no stock is switched on.
var ErrActivateWithoutStock = errors.New("product cannot be activated because stock is 0")

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

var slugTransliteration = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// Slugify turns a product name into its URL slug.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugTransliteration.Replace(s)
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FinalPrice is the discount price when it undercuts the base price, otherwise the base price.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// Discount is the amount saved by the discount price, zero when there is none.
func (p *Product) Discount() decimal.Decimal {
	return p.Price.Sub(p.FinalPrice())
}

// SetStock replaces the stock count. A product that runs out is switched off.
func (p *Product) SetStock(stock int) {
	if stock < 0 {
		stock = 0
	}
	p.Stock = stock
	if stock == 0 {
		p.Active = false
	}
}

// SetActive switches the product on or off.
func (p *Product) SetActive(active bool) error {
	if active && p.Stock < 1 {
		return ErrActivateWithoutStock
	}
	p.Active = active
	return nil
}

// Display returns the attributes shown next to a cart line.
func (p *Product) Display() ProductDisplay {
	return ProductDisplay{Key: p.Key, Name: p.Name, Image: p.Image, Category: p.Category}
}
