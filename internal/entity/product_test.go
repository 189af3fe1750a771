package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Product XYZ", "product-xyz"},
		{"  Größe Übergröße!  ", "groesse-uebergroesse"},
		{"Ultrawide Curved Monitor 34\"", "ultrawide-curved-monitor-34"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.name))
		})
	}
}

func TestProduct_FinalPrice(t *testing.T) {
	lower := dec("79.99")
	higher := dec("120")

	p := Product{Price: dec("99.99")}
	assert.True(t, dec("99.99").Equal(p.FinalPrice()))

	p.DiscountPrice = &lower
	assert.True(t, lower.Equal(p.FinalPrice()))
	assert.True(t, dec("20").Equal(p.Discount()))

	p.DiscountPrice = &higher
	assert.True(t, dec("99.99").Equal(p.FinalPrice()))
	assert.True(t, p.Discount().IsZero())
}

func TestProduct_StockAndActivation(t *testing.T) {
	p := Product{Stock: 3, Active: true}

	p.SetStock(0)
	assert.False(t, p.Active)
	assert.ErrorIs(t, p.SetActive(true), ErrActivateWithoutStock)

	p.SetStock(2)
	require.NoError(t, p.SetActive(true))
	assert.True(t, p.Active)

	p.SetStock(-4)
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.Active)
}

func TestOrder_MarkPaid(t *testing.T) {
	now := time.Now()
	c := NewCart(1, now)
	c.ID = 3
	c.Merge("p1", 2, dec("5"), now)
	o := NewOrder(c, &Address{ID: 1}, &Address{ID: 2}, &PaymentMethod{ID: 9}, now)

	assert.Equal(t, OrderStatusSetup, o.Status)
	assert.True(t, dec("10").Equal(o.TotalAmount))
	assert.True(t, o.References(2))
	assert.False(t, o.References(9))

	require.NoError(t, o.MarkPaid(now))
	assert.Equal(t, OrderStatusPaid, o.Status)
	require.NotNil(t, o.PaidAt)
	assert.ErrorIs(t, o.MarkPaid(now), ErrOrderNotPayable)
}
