package services

import (
	"context"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/session"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// CartService handles cart-related operations
type CartService struct {
	metrics *metrics.AppMetrics
}

// NewCartService creates a new cart service
func NewCartService(m *metrics.AppMetrics) *CartService {
	return &CartService{metrics: m}
}

// Add puts one unit of the product in the cart
func (s *CartService) Add(ctx context.Context, st *store.Store, productID string) error {
	p, ok := st.Product(productID)
	if !ok {
		return ErrProductNotFound
	}
	st.AddToCart(p)

	category := ""
	if len(p.Categories) > 0 {
		category = string(p.Categories[0])
	}
	s.metrics.CartAdds.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("product_id", p.ID),
		attribute.String("product_category", category),
		attribute.Bool("in_stock", p.InStock),
	))
	s.updateCartItemsCount(ctx, st)
	return nil
}

// Remove drops the product from the cart; unknown IDs are ignored
func (s *CartService) Remove(ctx context.Context, st *store.Store, productID string) {
	st.RemoveFromCart(productID)
	s.updateCartItemsCount(ctx, st)
}

// Update sets the quantity of a cart line; quantity <= 0 removes it
func (s *CartService) Update(ctx context.Context, st *store.Store, productID string, quantity int) {
	st.UpdateCartQuantity(productID, quantity)
	s.updateCartItemsCount(ctx, st)
}

// Summary returns the cart page. Shipping is free, so total equals subtotal.
func (s *CartService) Summary(st *store.Store) models.CartSummary {
	items := st.Cart()
	if items == nil {
		items = []models.CartItem{}
	}
	subtotal := st.CartSubtotal()
	return models.CartSummary{
		Items:     items,
		ItemCount: st.CartItemCount(),
		Lines:     len(items),
		Subtotal:  subtotal,
		Shipping:  0,
		Total:     subtotal,
	}
}

// Checkout is not implemented; it only acknowledges the request
func (s *CartService) Checkout(ctx context.Context, st *store.Store) (models.Notice, error) {
	if len(st.Cart()) == 0 {
		return models.Notice{}, ErrCartEmpty
	}
	return models.Notice{
		Title:       "Checkout",
		Description: "Checkout functionality would be implemented here.",
	}, nil
}

// updateCartItemsCount updates the cart items count gauge metric
func (s *CartService) updateCartItemsCount(ctx context.Context, st *store.Store) {
	count := st.CartItemCount()
	var attrs []attribute.KeyValue
	if sess, ok := session.FromContext(ctx); ok {
		attrs = append(attrs, attribute.String("session_id", sess.ID))
	}
	s.metrics.CartItemsCount.Record(ctx, int64(count), s.metrics.Attrs(attrs...))
	logger.Debug(ctx).Int("count", count).Msg("cart updated")
}
