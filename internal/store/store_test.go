package store

import (
	"context"
	"testing"

	"github.com/darte/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productA = models.Product{
		ID:          "p-a",
		Title:       "Blue Shirt",
		Price:       25.50,
		Categories:  []models.Category{models.CategoryMen},
		Description: "Cotton button-down",
		InStock:     true,
		Reviews:     12,
	}
	productB = models.Product{
		ID:          "p-b",
		Title:       "Silk Scarf",
		Price:       40,
		Categories:  []models.Category{models.CategoryWomen},
		Description: "Hand painted",
		InStock:     false,
		Reviews:     30,
	}
	productC = models.Product{
		ID:          "p-c",
		Title:       "Smart Watch",
		Price:       199.99,
		Categories:  []models.Category{models.CategoryGadgets, models.CategoryMen, models.CategoryGifts},
		Description: "Tracks steps and sleep",
		InStock:     true,
		Reviews:     30,
	}
)

func newTestStore() *Store {
	return New([]models.Product{productA, productB, productC})
}

func TestAddToCartTwiceIncrementsQuantity(t *testing.T) {
	s := newTestStore()

	s.AddToCart(productA)
	s.AddToCart(productA)

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, productA.ID, cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestCartScenario(t *testing.T) {
	s := New([]models.Product{productA, productB})

	s.AddToCart(productA)
	s.AddToCart(productA)
	s.AddToCart(productB)

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, productA.ID, cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, productB.ID, cart[1].ID)
	assert.Equal(t, 1, cart[1].Quantity)
	assert.Equal(t, 3, s.CartItemCount())
	assert.InDelta(t, 2*productA.Price+productB.Price, s.CartSubtotal(), 1e-9)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	s := newTestStore()
	s.AddToCart(productA)
	s.AddToCart(productB)

	s.RemoveFromCart(productA.ID)
	after := s.Cart()
	s.RemoveFromCart(productA.ID)

	assert.Equal(t, after, s.Cart())
	require.Len(t, after, 1)
	assert.Equal(t, productB.ID, after[0].ID)
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := newTestStore()
	s.AddToCart(productA)

	s.RemoveFromCart("missing")

	assert.Len(t, s.Cart(), 1)
}

func TestUpdateCartQuantity(t *testing.T) {
	t.Run("sets quantity", func(t *testing.T) {
		s := newTestStore()
		s.AddToCart(productA)
		s.UpdateCartQuantity(productA.ID, 7)
		assert.Equal(t, 7, s.Cart()[0].Quantity)
	})

	t.Run("no upper bound", func(t *testing.T) {
		s := newTestStore()
		s.AddToCart(productA)
		s.UpdateCartQuantity(productA.ID, 100000)
		assert.Equal(t, 100000, s.CartItemCount())
	})

	t.Run("zero equals remove", func(t *testing.T) {
		updated := newTestStore()
		removed := newTestStore()
		for _, s := range []*Store{updated, removed} {
			s.AddToCart(productA)
			s.AddToCart(productB)
		}

		updated.UpdateCartQuantity(productA.ID, 0)
		removed.RemoveFromCart(productA.ID)

		assert.Equal(t, removed.Cart(), updated.Cart())
	})

	t.Run("negative removes", func(t *testing.T) {
		s := newTestStore()
		s.AddToCart(productA)
		s.UpdateCartQuantity(productA.ID, -3)
		assert.Empty(t, s.Cart())
	})

	t.Run("unknown id is noop", func(t *testing.T) {
		s := newTestStore()
		s.UpdateCartQuantity(productA.ID, 4)
		assert.Empty(t, s.Cart())
	})
}

func TestCartItemCountMatchesQuantities(t *testing.T) {
	s := newTestStore()
	ops := []func(){
		func() { s.AddToCart(productA) },
		func() { s.AddToCart(productC) },
		func() { s.AddToCart(productA) },
		func() { s.UpdateCartQuantity(productC.ID, 5) },
		func() { s.AddToCart(productB) },
		func() { s.RemoveFromCart(productA.ID) },
		func() { s.UpdateCartQuantity(productB.ID, 0) },
		func() { s.AddToCart(productA) },
	}

	for _, op := range ops {
		op()
		sum := 0
		for _, item := range s.Cart() {
			assert.Positive(t, item.Quantity)
			sum += item.Quantity
		}
		assert.Equal(t, sum, s.CartItemCount())
	}
	assert.Equal(t, 6, s.CartItemCount())
}

func TestToggleFavoriteInvolution(t *testing.T) {
	s := newTestStore()
	s.ToggleFavorite(productB)
	before := s.Favorites()

	assert.True(t, s.ToggleFavorite(productA))
	assert.Equal(t, []models.Product{productB, productA}, s.Favorites())
	assert.True(t, s.IsFavorite(productA.ID))

	assert.False(t, s.ToggleFavorite(productA))
	assert.Equal(t, before, s.Favorites())
	assert.Equal(t, 1, s.FavoritesCount())
}

func TestFavoriteScenario(t *testing.T) {
	s := newTestStore()

	s.ToggleFavorite(productA)
	assert.Equal(t, []models.Product{productA}, s.Favorites())

	s.ToggleFavorite(productA)
	assert.Empty(t, s.Favorites())
}

func TestCategoryProducts(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, models.CategoryAll, s.CurrentCategory())
	assert.Len(t, s.CategoryProducts(), 3)

	s.SetCurrentCategory(models.CategoryMen)
	assert.Equal(t, []models.Product{productA, productC}, s.CategoryProducts())

	s.SetCurrentCategory(models.CategoryJewelry)
	assert.Empty(t, s.CategoryProducts())
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	s := newTestStore()

	s.SetSearchQuery("shirt")
	assert.Equal(t, []models.Product{productA}, s.SearchResults())

	s.SetSearchQuery("SLEEP")
	assert.Equal(t, []models.Product{productC}, s.SearchResults())

	s.SetSearchQuery("gift")
	assert.Equal(t, []models.Product{productC}, s.SearchResults())

	s.SetSearchQuery("  shirt")
	assert.Equal(t, "  shirt", s.SearchQuery())
	assert.Empty(t, s.SearchResults())
}

func TestEmptySearchMatchesEverything(t *testing.T) {
	s := newTestStore()
	assert.Len(t, s.SearchResults(), 3)
}

func TestLoginLogout(t *testing.T) {
	s := newTestStore()
	assert.Nil(t, s.CurrentUser())

	admin := models.User{ID: "u1", Username: "ada", IsAdmin: true}
	s.Login(admin)
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, admin, *s.CurrentUser())
	assert.True(t, s.CurrentUser().IsAdmin)

	other := models.User{ID: "u2", Username: "bob"}
	s.Login(other)
	assert.Equal(t, other, *s.CurrentUser())
	assert.False(t, s.CurrentUser().IsAdmin)

	s.Logout()
	assert.Nil(t, s.CurrentUser())
}

func TestRecommendedDoesNotReorderCatalog(t *testing.T) {
	s := newTestStore()

	rec := s.Recommended(2)

	assert.Equal(t, []models.Product{productB, productC}, rec)
	assert.Equal(t, []models.Product{productA, productB, productC}, s.Products())
}

func TestSnapshot(t *testing.T) {
	s := newTestStore()
	s.AddToCart(productA)
	s.AddToCart(productA)
	s.ToggleFavorite(productB)
	s.SetSearchQuery("watch")
	s.SetCurrentCategory(models.CategoryGadgets)

	snap := s.Snapshot()

	assert.Nil(t, snap.User)
	assert.Equal(t, 2, snap.CartItemCount)
	assert.Equal(t, 1, snap.FavoritesCount)
	assert.Equal(t, "watch", snap.SearchQuery)
	assert.Equal(t, models.CategoryGadgets, snap.Category)
}

func TestContextRoundTrip(t *testing.T) {
	s := newTestStore()
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
