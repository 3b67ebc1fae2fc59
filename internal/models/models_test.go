package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range ShopCategories {
		got, ok := ParseCategory(c.Slug())
		require.True(t, ok, c)
		assert.Equal(t, c, got)
	}

	got, ok := ParseCategory("all")
	assert.True(t, ok)
	assert.Equal(t, CategoryAll, got)

	_, ok = ParseCategory("toys")
	assert.False(t, ok)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryAll.Valid())
	assert.True(t, CategoryJewelry.Valid())
	assert.False(t, Category("jewelry").Valid())
	assert.Empty(t, CategoryAll.Slug())
}

func TestUserRole(t *testing.T) {
	assert.Equal(t, "Admin", User{IsAdmin: true, IsSeller: true}.Role())
	assert.Equal(t, "Seller", User{IsSeller: true}.Role())
	assert.Equal(t, "Customer", User{}.Role())
}

func TestCartItemJSONIsFlat(t *testing.T) {
	item := CartItem{
		Product:  Product{ID: "1", Title: "Watch", Price: 10, Categories: []Category{CategoryGadgets}},
		Quantity: 3,
	}
	assert.InDelta(t, 30.0, item.LineTotal(), 1e-9)

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "1", flat["id"])
	assert.Equal(t, float64(3), flat["quantity"])
	assert.Equal(t, []any{"Gadgets"}, flat["category"])
}
