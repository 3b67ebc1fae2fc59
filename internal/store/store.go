// Package store holds the per-session storefront state and the operations
// allowed to change it. Every operation is total: invalid input is a no-op.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/darte/storefront/internal/models"
)

// Store is the single authoritative holder of one session's state.
type Store struct {
	mu sync.Mutex

	products  []models.Product // read-only, shared with the catalog
	cart      []models.CartItem
	favorites []models.Product
	user      *models.User
	category  models.Category
	search    string
}

// New creates a store over the given catalog products. The slice is never modified.
func New(products []models.Product) *Store {
	return &Store{
		products: products,
		category: models.CategoryAll,
	}
}

// AddToCart increments the quantity of an existing item or appends a new one.
func (s *Store) AddToCart(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == p.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, models.CartItem{Product: p, Quantity: 1})
}

// RemoveFromCart deletes the item with the given product ID, if present.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID string) {
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
			return
		}
	}
}

// UpdateCartQuantity sets an item's quantity; quantity <= 0 removes it.
func (s *Store) UpdateCartQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity = quantity
			return
		}
	}
}

// ToggleFavorite removes the product from favorites if present, appends it otherwise.
// It reports whether the product is a favorite afterwards.
func (s *Store) ToggleFavorite(p models.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.favorites {
		if s.favorites[i].ID == p.ID {
			s.favorites = append(s.favorites[:i:i], s.favorites[i+1:]...)
			return false
		}
	}
	s.favorites = append(s.favorites, p)
	return true
}

// SetCurrentCategory selects the category shown on listing pages.
func (s *Store) SetCurrentCategory(c models.Category) {
	s.mu.Lock()
	s.category = c
	s.mu.Unlock()
}

// SetSearchQuery stores text verbatim.
func (s *Store) SetSearchQuery(text string) {
	s.mu.Lock()
	s.search = text
	s.mu.Unlock()
}

// Login replaces the current user unconditionally.
func (s *Store) Login(u models.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// Logout clears the current user.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Products returns the catalog products in seed order.
func (s *Store) Products() []models.Product {
	return append([]models.Product(nil), s.products...)
}

// Product looks up a catalog product by ID.
func (s *Store) Product(id string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Cart returns a copy of the cart items in insertion order.
func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.cart...)
}

// Favorites returns a copy of the favorites in insertion order.
func (s *Store) Favorites() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.favorites...)
}

// CurrentUser returns a copy of the logged in user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// CurrentCategory returns the selected category.
func (s *Store) CurrentCategory() models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// SearchQuery returns the search text as entered.
func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// CartItemCount is the sum of quantities across the cart.
func (s *Store) CartItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemCountLocked()
}

func (s *Store) itemCountLocked() int {
	n := 0
	for _, item := range s.cart {
		n += item.Quantity
	}
	return n
}

// CartSubtotal is the sum of price times quantity across the cart.
func (s *Store) CartSubtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.cart {
		total += item.LineTotal()
	}
	return total
}

// FavoritesCount is the number of favorited products.
func (s *Store) FavoritesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.favorites)
}

// IsFavorite reports whether the product ID is among the favorites.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.ID == productID {
			return true
		}
	}
	return false
}

// CategoryProducts returns the products tagged with the active category, in
// catalog order. The All category matches every product.
func (s *Store) CategoryProducts() []models.Product {
	c := s.CurrentCategory()
	if c == models.CategoryAll {
		return s.Products()
	}

	var out []models.Product
	for _, p := range s.products {
		if p.HasCategory(c) {
			out = append(out, p)
		}
	}
	return out
}

// SearchResults returns the products whose title, description or a category
// tag contains the search text, ignoring case.
func (s *Store) SearchResults() []models.Product {
	return Search(s.products, s.SearchQuery())
}

// Search filters products by a case-insensitive substring match.
func Search(products []models.Product, query string) []models.Product {
	q := strings.ToLower(query)

	var out []models.Product
	for _, p := range products {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p models.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, c := range p.Categories {
		if strings.Contains(strings.ToLower(string(c)), q) {
			return true
		}
	}
	return false
}

// Recommended returns up to n products with the most reviews. Ties keep catalog order.
func (s *Store) Recommended(n int) []models.Product {
	ranked := s.Products()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Reviews > ranked[j].Reviews
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Snapshot returns the navbar view of the session.
func (s *Store) Snapshot() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u *models.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return models.SessionState{
		User:           u,
		Category:       s.category,
		SearchQuery:    s.search,
		CartItemCount:  s.itemCountLocked(),
		FavoritesCount: len(s.favorites),
	}
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store attached to ctx.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	return s, ok
}
