package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tieredProduct() *Product {
	return &Product{
		Price: decimal.RequireFromString("10.00"),
		PriceTiers: []PriceTier{
			{MinQuantity: 10, Price: decimal.RequireFromString("9.00")},
			{MinQuantity: 50, Price: decimal.RequireFromString("7.50")},
		},
	}
}

func TestUnitPriceForTierBoundaries(t *testing.T) {
	p := tieredProduct()

	cases := []struct {
		qty  int
		want string
	}{
		{1, "10.00"},
		{9, "10.00"},
		{10, "9.00"},
		{49, "9.00"},
		{50, "7.50"},
		{500, "7.50"},
	}
	for _, tc := range cases {
		got := p.UnitPriceFor(tc.qty)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"qty %d: expected %s, got %s", tc.qty, tc.want, got)
	}
}

func TestValidatePriceTiers(t *testing.T) {
	p := tieredProduct()
	require.NoError(t, p.ValidatePriceTiers())

	p.PriceTiers = []PriceTier{
		{MinQuantity: 10, Price: decimal.NewFromInt(9)},
		{MinQuantity: 10, Price: decimal.NewFromInt(8)},
	}
	assert.ErrorIs(t, p.ValidatePriceTiers(), ErrInvalidPriceTiers)

	p.PriceTiers = []PriceTier{
		{MinQuantity: 50, Price: decimal.NewFromInt(9)},
		{MinQuantity: 10, Price: decimal.NewFromInt(8)},
	}
	assert.ErrorIs(t, p.ValidatePriceTiers(), ErrInvalidPriceTiers)

	p.PriceTiers = []PriceTier{{MinQuantity: 0, Price: decimal.NewFromInt(9)}}
	assert.ErrorIs(t, p.ValidatePriceTiers(), ErrInvalidPriceTiers)

	p.PriceTiers = []PriceTier{{MinQuantity: 5, Price: decimal.Zero}}
	assert.ErrorIs(t, p.ValidatePriceTiers(), ErrInvalidPriceTiers)

	p.PriceTiers = nil
	assert.NoError(t, p.ValidatePriceTiers())
}

func TestAdjustStockFlipsStatus(t *testing.T) {
	p := &Product{Stock: 3, Status: StatusActive}

	require.NoError(t, p.AdjustStock(-3))
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, StatusOutOfStock, p.Status)

	require.NoError(t, p.AdjustStock(5))
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, StatusActive, p.Status)
}

func TestAdjustStockRejectsNegative(t *testing.T) {
	p := &Product{Stock: 2, Status: StatusActive}

	err := p.AdjustStock(-3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, StatusActive, p.Status)
}

func TestAdjustStockDoesNotReviveDiscontinued(t *testing.T) {
	p := &Product{Stock: 0, Status: StatusDiscontinued}

	require.NoError(t, p.AdjustStock(10))
	assert.Equal(t, StatusDiscontinued, p.Status)
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, (&Product{Status: StatusActive}).IsAvailable())
	assert.False(t, (&Product{Status: StatusDraft}).IsAvailable())
	assert.False(t, (&Product{Status: StatusOutOfStock}).IsAvailable())
	assert.False(t, (&Product{Status: StatusDiscontinued}).IsAvailable())
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, (&Product{Stock: 3, LowStockThreshold: 5}).IsLowStock())
	assert.True(t, (&Product{Stock: 5, LowStockThreshold: 5}).IsLowStock())
	assert.False(t, (&Product{Stock: 6, LowStockThreshold: 5}).IsLowStock())
	// 未配置阈值时不触发
	assert.False(t, (&Product{Stock: 0, LowStockThreshold: 0}).IsLowStock())
}

func TestProductStatusIsValid(t *testing.T) {
	assert.True(t, StatusActive.IsValid())
	assert.True(t, StatusDraft.IsValid())
	assert.False(t, ProductStatus("archived").IsValid())
}

func TestNormalizeSKU(t *testing.T) {
	assert.Equal(t, "ABC-123", NormalizeSKU("  abc-123 "))
}
