package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
)

// Querier is the subset of *sql.DB the SQL source needs
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLSource reads the catalog from the MySQL tables created by schema.sql.
// Categories are stored as a comma separated column.
type SQLSource struct {
	DB      Querier
	Metrics *metrics.AppMetrics
}

// Load reads products, users and pending seller applications, then validates them.
func (s SQLSource) Load(ctx context.Context) (*Catalog, error) {
	var c Catalog
	var err error

	if c.Products, err = s.loadProducts(ctx); err != nil {
		return nil, err
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	// The first admin is the account sessions start with
	for _, u := range users {
		if u.IsAdmin && c.SessionUser.ID == "" {
			c.SessionUser = u
			continue
		}
		c.Users = append(c.Users, u)
	}

	if c.PendingSellers, err = s.loadPendingSellers(ctx); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s SQLSource) loadProducts(ctx context.Context) ([]models.Product, error) {
	start := time.Now()
	query := `SELECT id, title, price, rating, seller, image, categories, description, in_stock, reviews FROM products ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query)
	s.record(ctx, "products", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var categories string
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Rating, &p.Seller, &p.Image, &categories, &p.Description, &p.InStock, &p.Reviews); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Categories = splitCategories(categories)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s SQLSource) loadUsers(ctx context.Context) ([]models.User, error) {
	start := time.Now()
	query := `SELECT id, username, email, profile_image, is_seller, is_admin FROM users ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	s.record(ctx, "users", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.ProfileImage, &u.IsSeller, &u.IsAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s SQLSource) loadPendingSellers(ctx context.Context) ([]models.SellerApplication, error) {
	start := time.Now()
	query := `SELECT id, username, email, applied_date FROM seller_applications WHERE status = 'pending' ORDER BY applied_date`
	rows, err := s.DB.QueryContext(ctx, query)
	s.record(ctx, "seller_applications", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller applications: %w", err)
	}
	defer rows.Close()

	var apps []models.SellerApplication
	for rows.Next() {
		var a models.SellerApplication
		var applied time.Time
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan seller application: %w", err)
		}
		a.AppliedDate = applied.Format("2006-01-02")
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s SQLSource) record(ctx context.Context, table, query string, start time.Time, ok bool) {
	if s.Metrics != nil {
		s.Metrics.RecordCatalogQuery(ctx, "SELECT", table, query, start, ok)
	}
}

func splitCategories(s string) []models.Category {
	var out []models.Category
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, models.Category(part))
		}
	}
	return out
}
