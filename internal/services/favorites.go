package services

import (
	"context"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

// FavoriteService handles the favorites list
type FavoriteService struct {
	metrics *metrics.AppMetrics
}

// NewFavoriteService creates a new favorites service
func NewFavoriteService(m *metrics.AppMetrics) *FavoriteService {
	return &FavoriteService{metrics: m}
}

// Toggle adds or removes the product and reports whether it is now a favorite
func (s *FavoriteService) Toggle(ctx context.Context, st *store.Store, productID string) (bool, error) {
	p, ok := st.Product(productID)
	if !ok {
		return false, ErrProductNotFound
	}
	favorited := st.ToggleFavorite(p)

	action := "removed"
	if favorited {
		action = "added"
	}
	s.metrics.FavoritesToggled.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("product_id", productID),
		attribute.String("action", action),
	))
	return favorited, nil
}

// List returns the favorites in the order they were added
func (s *FavoriteService) List(st *store.Store) []models.Product {
	return nonNil(st.Favorites())
}
