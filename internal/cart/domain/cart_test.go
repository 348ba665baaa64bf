package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(itemID, productID, sku string, qty int, price string) CartItem {
	return CartItem{
		ItemID:     itemID,
		ProductID:  productID,
		VariantSKU: sku,
		Quantity:   qty,
		Snapshot: ProductSnapshot{
			Price:          decimal.RequireFromString(price),
			InStock:        true,
			AvailableStock: 100,
		},
	}
}

func TestCartRecalculate(t *testing.T) {
	cart := &Cart{
		UserID: "user-1",
		Items: []CartItem{
			newItem("ITM-1", "PRD-1", "", 2, "19.99"),
			newItem("ITM-2", "PRD-2", "red", 3, "5.50"),
		},
	}

	cart.Recalculate()

	assert.Equal(t, 5, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(decimal.RequireFromString("56.48")),
		"expected 56.48, got %s", cart.Subtotal)
}

func TestCartRecalculateEmpty(t *testing.T) {
	cart := &Cart{UserID: "user-1", TotalItems: 7, Subtotal: decimal.NewFromInt(99)}

	cart.Recalculate()

	assert.Equal(t, 0, cart.TotalItems)
	assert.True(t, cart.Subtotal.IsZero())
	assert.True(t, cart.IsEmpty())
}

func TestCartLineTotal(t *testing.T) {
	item := newItem("ITM-1", "PRD-1", "", 4, "2.25")
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(9)))
}

func TestCartFindItemDistinguishesVariants(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			newItem("ITM-1", "PRD-1", "red", 1, "10.00"),
			newItem("ITM-2", "PRD-1", "blue", 2, "10.00"),
		},
	}

	found := cart.FindItem("PRD-1", "blue")
	require.NotNil(t, found)
	assert.Equal(t, "ITM-2", found.ItemID)

	assert.Nil(t, cart.FindItem("PRD-1", "green"))
	assert.Nil(t, cart.FindItem("PRD-2", "red"))
}

func TestCartRemoveItemByID(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			newItem("ITM-1", "PRD-1", "", 1, "10.00"),
			newItem("ITM-2", "PRD-2", "", 2, "20.00"),
		},
	}

	assert.True(t, cart.RemoveItemByID("ITM-1"))
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "ITM-2", cart.Items[0].ItemID)

	assert.False(t, cart.RemoveItemByID("ITM-1"))
	assert.Len(t, cart.Items, 1)
}

func TestCartRemoveItemsByIDs(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			newItem("ITM-1", "PRD-1", "", 1, "10.00"),
			newItem("ITM-2", "PRD-2", "", 2, "20.00"),
			newItem("ITM-3", "PRD-3", "", 3, "30.00"),
		},
	}

	removed := cart.RemoveItemsByIDs([]string{"ITM-1", "ITM-3", "ITM-404"})

	assert.Equal(t, 2, removed)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "ITM-2", cart.Items[0].ItemID)
}

func TestProductInfoUnitPriceFor(t *testing.T) {
	product := &ProductInfo{
		BasePrice: decimal.RequireFromString("10.00"),
		Tiers: []PriceTier{
			{MinQuantity: 5, Price: decimal.RequireFromString("9.00")},
			{MinQuantity: 10, Price: decimal.RequireFromString("8.00")},
		},
	}

	cases := []struct {
		qty  int
		want string
	}{
		{1, "10.00"},
		{4, "10.00"},
		{5, "9.00"},
		{9, "9.00"},
		{10, "8.00"},
		{100, "8.00"},
	}
	for _, tc := range cases {
		got := product.UnitPriceFor(tc.qty)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"qty %d: expected %s, got %s", tc.qty, tc.want, got)
	}
}

func TestProductInfoUnitPriceForNoTiers(t *testing.T) {
	product := &ProductInfo{BasePrice: decimal.RequireFromString("3.50")}
	assert.True(t, product.UnitPriceFor(99).Equal(decimal.RequireFromString("3.50")))
}
