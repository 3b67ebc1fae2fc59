package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darte/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSeedLoads(t *testing.T) {
	c, err := FileSource{}.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, c.Products, 12)
	assert.True(t, c.SessionUser.IsAdmin)
	assert.Len(t, c.Users, 3)
	assert.Len(t, c.PendingSellers, 2)

	p, ok := c.Product("3")
	require.True(t, ok)
	assert.Equal(t, "Wireless Noise-Cancelling Headphones", p.Title)
	assert.Equal(t, []models.Category{models.CategoryGadgets, models.CategoryGifts}, p.Categories)

	for _, cat := range models.ShopCategories {
		found := false
		for _, p := range c.Products {
			if p.HasCategory(cat) {
				found = true
				break
			}
		}
		assert.True(t, found, "no seed product in %s", cat)
	}
}

func TestFileSourceFromPath(t *testing.T) {
	doc := `
sessionUser:
  id: u1
  username: tester
products:
  - id: a
    title: Thing
    price: 1
    category: [Gifts]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "tester", c.SessionUser.Username)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load(context.Background())
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("sessionUser: {id: u1}\nbanner: hello\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Catalog {
		return &Catalog{
			SessionUser: models.User{ID: "u1"},
			Products: []models.Product{
				{ID: "a", Price: 10, Rating: 4, Categories: []models.Category{models.CategoryMen}},
				{ID: "b", Price: 0, Rating: 0, Categories: []models.Category{models.CategoryGifts}},
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{"no session user", func(c *Catalog) { c.SessionUser.ID = "" }},
		{"empty id", func(c *Catalog) { c.Products[0].ID = "" }},
		{"duplicate id", func(c *Catalog) { c.Products[1].ID = "a" }},
		{"negative price", func(c *Catalog) { c.Products[0].Price = -1 }},
		{"rating above five", func(c *Catalog) { c.Products[0].Rating = 5.5 }},
		{"negative reviews", func(c *Catalog) { c.Products[0].Reviews = -2 }},
		{"no categories", func(c *Catalog) { c.Products[0].Categories = nil }},
		{"unknown category", func(c *Catalog) { c.Products[0].Categories = []models.Category{"Toys"} }},
		{"All as tag", func(c *Catalog) { c.Products[0].Categories = []models.Category{models.CategoryAll} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestLookups(t *testing.T) {
	c, err := FileSource{}.Load(context.Background())
	require.NoError(t, err)

	_, ok := c.Product("missing")
	assert.False(t, ok)

	u, ok := c.User("usr_002")
	require.True(t, ok)
	assert.Equal(t, "Seller", u.Role())

	app, ok := c.PendingSeller("pending_001")
	require.True(t, ok)
	assert.Equal(t, "new_seller1", app.Username)
}

func TestSplitCategories(t *testing.T) {
	assert.Equal(t,
		[]models.Category{models.CategoryMen, models.CategoryClothing},
		splitCategories(" Men, Clothing ,"),
	)
	assert.Empty(t, splitCategories(""))
}
