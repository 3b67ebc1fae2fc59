package services

import (
	"context"

	"github.com/darte/storefront/internal/catalog"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
)

// DashboardStats are the admin summary cards
type DashboardStats struct {
	TotalUsers          int `json:"totalUsers"`
	Sellers             int `json:"sellers"`
	PendingApplications int `json:"pendingApplications"`
	TotalProducts       int `json:"totalProducts"`
}

// DirectoryUser is a row of the admin user table
type DirectoryUser struct {
	models.User
	Role string `json:"role"`
}

// Dashboard is the admin page
type Dashboard struct {
	Stats          DashboardStats             `json:"stats"`
	PendingSellers []models.SellerApplication `json:"pendingSellers"`
	Users          []DirectoryUser            `json:"users"`
}

// AdminService serves the admin dashboard over the static user directory.
// Actions only return confirmations.
type AdminService struct {
	catalog *catalog.Catalog
}

// NewAdminService creates an admin service over the catalog directory
func NewAdminService(cat *catalog.Catalog) *AdminService {
	return &AdminService{catalog: cat}
}

// CanAdminister reports whether the user may see the dashboard
func CanAdminister(u *models.User) bool {
	return u != nil && u.IsAdmin
}

// Dashboard returns the stats, pending applications and user directory
func (s *AdminService) Dashboard(ctx context.Context, st *store.Store) (*Dashboard, error) {
	if !CanAdminister(st.CurrentUser()) {
		return nil, ErrForbidden
	}

	d := &Dashboard{
		PendingSellers: append([]models.SellerApplication{}, s.catalog.PendingSellers...),
		Users:          make([]DirectoryUser, 0, len(s.catalog.Users)),
	}
	for _, u := range s.catalog.Users {
		if u.IsSeller {
			d.Stats.Sellers++
		}
		d.Users = append(d.Users, DirectoryUser{User: u, Role: u.Role()})
	}
	d.Stats.TotalUsers = len(s.catalog.Users)
	d.Stats.PendingApplications = len(s.catalog.PendingSellers)
	d.Stats.TotalProducts = len(st.Products())
	return d, nil
}

// ApproveSeller confirms a pending application
func (s *AdminService) ApproveSeller(ctx context.Context, st *store.Store, applicationID string) (models.Notice, error) {
	app, err := s.pending(st, applicationID)
	if err != nil {
		return models.Notice{}, err
	}
	logger.Info(ctx).Str("application_id", app.ID).Msg("seller approved")
	return models.Notice{
		Title:       "Seller approved",
		Description: app.Username + " has been approved as a seller.",
	}, nil
}

// RejectSeller declines a pending application
func (s *AdminService) RejectSeller(ctx context.Context, st *store.Store, applicationID string) (models.Notice, error) {
	app, err := s.pending(st, applicationID)
	if err != nil {
		return models.Notice{}, err
	}
	logger.Info(ctx).Str("application_id", app.ID).Msg("seller rejected")
	return models.Notice{
		Title:       "Seller rejected",
		Description: app.Username + "'s seller application has been rejected.",
	}, nil
}

// RemoveSellerRole confirms demoting a non-admin seller
func (s *AdminService) RemoveSellerRole(ctx context.Context, st *store.Store, userID string) (models.Notice, error) {
	if !CanAdminister(st.CurrentUser()) {
		return models.Notice{}, ErrForbidden
	}
	u, ok := s.catalog.User(userID)
	if !ok || !u.IsSeller || u.IsAdmin {
		return models.Notice{}, ErrNotFound
	}
	logger.Info(ctx).Str("user_id", u.ID).Msg("seller role removed")
	return models.Notice{
		Title:       "Seller role removed",
		Description: u.Username + " is no longer a seller.",
	}, nil
}

func (s *AdminService) pending(st *store.Store, id string) (models.SellerApplication, error) {
	if !CanAdminister(st.CurrentUser()) {
		return models.SellerApplication{}, ErrForbidden
	}
	app, ok := s.catalog.PendingSeller(id)
	if !ok {
		return models.SellerApplication{}, ErrNotFound
	}
	return app, nil
}
