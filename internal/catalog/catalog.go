// Package catalog loads the read-only product catalog and user directory
// that seed every storefront session.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/darte/storefront/internal/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the static data a storefront runs on
type Catalog struct {
	Products       []models.Product           `yaml:"products"`
	SessionUser    models.User                `yaml:"sessionUser"`
	Users          []models.User              `yaml:"users"`
	PendingSellers []models.SellerApplication `yaml:"pendingSellers"`
}

// Source provides a catalog at startup
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Writer would persist uploaded products. Nothing implements it yet: uploads
// are acknowledged without changing the catalog.
type Writer interface {
	CreateProduct(ctx context.Context, draft models.ProductDraft) error
}

// Product looks up a product by ID
func (c *Catalog) Product(id string) (models.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// User looks up a directory user by ID
func (c *Catalog) User(id string) (models.User, bool) {
	for _, u := range c.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// PendingSeller looks up a pending seller application by ID
func (c *Catalog) PendingSeller(id string) (models.SellerApplication, bool) {
	for _, a := range c.PendingSellers {
		if a.ID == id {
			return a, true
		}
	}
	return models.SellerApplication{}, false
}

// Validate checks the invariants every session relies on
func (c *Catalog) Validate() error {
	if c.SessionUser.ID == "" {
		return fmt.Errorf("%w: session user has no id", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		switch {
		case p.ID == "":
			return fmt.Errorf("%w: product %d has no id", ErrInvalidCatalog, i)
		case seen[p.ID]:
			return fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		case p.Price < 0:
			return fmt.Errorf("%w: product %q has negative price", ErrInvalidCatalog, p.ID)
		case p.Rating < 0 || p.Rating > 5:
			return fmt.Errorf("%w: product %q rating %.1f out of range", ErrInvalidCatalog, p.ID, p.Rating)
		case p.Reviews < 0:
			return fmt.Errorf("%w: product %q has negative review count", ErrInvalidCatalog, p.ID)
		case len(p.Categories) == 0:
			return fmt.Errorf("%w: product %q has no category", ErrInvalidCatalog, p.ID)
		}
		for _, cat := range p.Categories {
			if cat == models.CategoryAll || !cat.Valid() {
				return fmt.Errorf("%w: product %q has unknown category %q", ErrInvalidCatalog, p.ID, cat)
			}
		}
		seen[p.ID] = true
	}
	return nil
}
