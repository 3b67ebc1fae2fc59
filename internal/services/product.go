package services

import (
	"context"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// RecommendedCount is the number of products featured on the home page
const RecommendedCount = 4

// HomePage is the storefront landing view
type HomePage struct {
	Recommended []models.Product  `json:"recommended"`
	Products    []models.Product  `json:"products"`
	Categories  []models.Category `json:"categories"`
}

// CategoryPage lists the products of one category
type CategoryPage struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

// SearchPage lists the products matching the session's search text
type SearchPage struct {
	Query    string           `json:"query"`
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

// ProductPage is the product detail view
type ProductPage struct {
	Product    models.Product `json:"product"`
	IsFavorite bool           `json:"isFavorite"`
	InCart     int            `json:"inCart"`
	SellerID   string         `json:"sellerId"`
}

// ProductService handles catalog browsing
type ProductService struct {
	metrics *metrics.AppMetrics
}

// NewProductService creates a new product service
func NewProductService(m *metrics.AppMetrics) *ProductService {
	return &ProductService{metrics: m}
}

// Home resets the active category and returns the landing page
func (s *ProductService) Home(ctx context.Context, st *store.Store) HomePage {
	st.SetCurrentCategory(models.CategoryAll)
	return HomePage{
		Recommended: st.Recommended(RecommendedCount),
		Products:    st.CategoryProducts(),
		Categories:  models.ShopCategories,
	}
}

// Category activates c and lists its products in catalog order
func (s *ProductService) Category(ctx context.Context, st *store.Store, c models.Category) CategoryPage {
	st.SetCurrentCategory(c)
	products := nonNil(st.CategoryProducts())
	return CategoryPage{
		Category: c,
		Products: products,
		Count:    len(products),
	}
}

// Search returns the results for the session's search text. A non-nil
// query replaces the search text first.
func (s *ProductService) Search(ctx context.Context, st *store.Store, query *string) SearchPage {
	if query != nil {
		st.SetSearchQuery(*query)
	}
	q := st.SearchQuery()
	products := nonNil(st.SearchResults())

	s.metrics.SearchesTotal.Add(ctx, 1, s.metrics.Attrs(attribute.Bool("has_results", len(products) > 0)))
	logger.Debug(ctx).Str("query", q).Int("results", len(products)).Msg("search")

	return SearchPage{
		Query:    q,
		Products: products,
		Count:    len(products),
	}
}

// Get returns the product detail page
func (s *ProductService) Get(ctx context.Context, st *store.Store, id string) (*ProductPage, error) {
	p, ok := st.Product(id)
	if !ok {
		return nil, ErrProductNotFound
	}

	category := ""
	if len(p.Categories) > 0 {
		category = string(p.Categories[0])
	}
	s.metrics.ProductsViewed.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("product_id", id),
		attribute.String("product_category", category),
	))

	page := &ProductPage{
		Product:    p,
		IsFavorite: st.IsFavorite(id),
		SellerID:   SellerID(p.Seller),
	}
	for _, item := range st.Cart() {
		if item.ID == id {
			page.InCart = item.Quantity
		}
	}
	return page, nil
}

// nonNil keeps empty listings encoding as [] rather than null
func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
