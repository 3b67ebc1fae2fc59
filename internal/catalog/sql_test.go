package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productColumns = []string{"id", "title", "price", "rating", "seller", "image", "categories", "description", "in_stock", "reviews"}
	userColumns    = []string{"id", "username", "email", "profile_image", "is_seller", "is_admin"}
	pendingColumns = []string{"id", "username", "email", "applied_date"}
)

func newMockSource(t *testing.T) (SQLSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return SQLSource{DB: db, Metrics: metrics.Noop()}, mock
}

func expectUsersAndPending(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(
		sqlmock.NewRows(userColumns).
			AddRow("usr_000", "darte_admin", "admin@darte.shop", "", true, true).
			AddRow("usr_001", "john_doe", "john@example.com", "", false, false).
			AddRow("usr_009", "second_admin", "ops@darte.shop", "", false, true),
	)
	mock.ExpectQuery("SELECT (.+) FROM seller_applications WHERE status = 'pending'").WillReturnRows(
		sqlmock.NewRows(pendingColumns).
			AddRow("pending_001", "new_seller1", "s1@example.com", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)),
	)
}

func TestSQLSourceLoad(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY position").WillReturnRows(
		sqlmock.NewRows(productColumns).
			AddRow("1", "Classic Watch", 89.99, 4.5, "Timeless Co", "w.jpg", "Men, Gadgets", "A watch", true, int64(120)).
			AddRow("2", "Silk Scarf", 64.5, 4.8, "Lumen", "s.jpg", "Women,Gifts,", "A scarf", false, int64(8)),
	)
	expectUsersAndPending(mock)

	c, err := src.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, c.Products, 2)
	assert.Equal(t, []models.Category{models.CategoryMen, models.CategoryGadgets}, c.Products[0].Categories)
	assert.Equal(t, []models.Category{models.CategoryWomen, models.CategoryGifts}, c.Products[1].Categories)
	assert.False(t, c.Products[1].InStock)

	// The first admin becomes the session user and leaves the directory
	assert.Equal(t, "usr_000", c.SessionUser.ID)
	require.Len(t, c.Users, 2)
	_, ok := c.User("usr_000")
	assert.False(t, ok)
	second, ok := c.User("usr_009")
	require.True(t, ok)
	assert.True(t, second.IsAdmin)

	require.Len(t, c.PendingSellers, 1)
	assert.Equal(t, "2024-01-15", c.PendingSellers[0].AppliedDate)
}

func TestSQLSourceValidatesRows(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(
		sqlmock.NewRows(productColumns).
			AddRow("1", "Classic Watch", 89.99, 7.0, "Timeless Co", "w.jpg", "Men", "A watch", true, int64(120)),
	)
	expectUsersAndPending(mock)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestSQLSourceRequiresAdmin(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(
		sqlmock.NewRows(productColumns).
			AddRow("1", "Classic Watch", 89.99, 4.5, "Timeless Co", "w.jpg", "Men", "A watch", true, int64(120)),
	)
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(
		sqlmock.NewRows(userColumns).AddRow("usr_001", "john_doe", "john@example.com", "", false, false),
	)
	mock.ExpectQuery("SELECT (.+) FROM seller_applications").WillReturnRows(sqlmock.NewRows(pendingColumns))

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestSQLSourceScanError(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(
		sqlmock.NewRows(productColumns).
			AddRow("1", "Classic Watch", "not a price", 4.5, "Timeless Co", "w.jpg", "Men", "A watch", true, int64(120)),
	)

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan product")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestSQLSourceQueryError(t *testing.T) {
	src, mock := newMockSource(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnError(boom)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to query products")
}
