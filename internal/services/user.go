package services

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

const defaultProfileImage = "https://images.unsplash.com/photo-1494790108755-2616b612b775"

// UserService handles the mock login and profile pages. No credential is checked.
type UserService struct {
	metrics *metrics.AppMetrics
}

// NewUserService creates a new user service
func NewUserService(m *metrics.AppMetrics) *UserService {
	return &UserService{metrics: m}
}

// Login signs in (or signs up) a fresh customer account built from the form.
// Email and password must be present, and a username too when signing up.
func (s *UserService) Login(ctx context.Context, st *store.Store, req models.LoginRequest) (models.User, models.Notice, error) {
	if err := required("email", req.Email); err != nil {
		return models.User{}, models.Notice{}, err
	}
	if err := required("password", req.Password); err != nil {
		return models.User{}, models.Notice{}, err
	}
	if req.SignUp {
		if err := required("username", req.Username); err != nil {
			return models.User{}, models.Notice{}, err
		}
	}

	username := req.Username
	if username == "" {
		username = "user"
	}
	u := models.User{
		ID:           "usr_" + randomBase36(9),
		Username:     username,
		Email:        req.Email,
		ProfileImage: defaultProfileImage,
	}
	st.Login(u)

	mode := "login"
	notice := models.Notice{Title: "Welcome back!", Description: "You have successfully logged in."}
	if req.SignUp {
		mode = "signup"
		notice = models.Notice{Title: "Account created!", Description: "You have successfully signed up."}
	}

	s.metrics.LoginsTotal.Add(ctx, 1, s.metrics.Attrs(attribute.String("mode", mode)))
	logger.Info(ctx).Str("user_id", u.ID).Str("mode", mode).Msg("user logged in")
	return u, notice, nil
}

// Logout clears the session user
func (s *UserService) Logout(ctx context.Context, st *store.Store) models.Notice {
	st.Logout()
	return models.Notice{Title: "Logged out", Description: "You have been successfully logged out."}
}

// Profile returns the current user
func (s *UserService) Profile(st *store.Store) (*models.User, error) {
	u := st.CurrentUser()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// UpdateProfile validates the edit form. The account itself is not changed.
func (s *UserService) UpdateProfile(ctx context.Context, st *store.Store, req models.ProfileUpdateRequest) (models.Notice, error) {
	if st.CurrentUser() == nil {
		return models.Notice{}, ErrNotLoggedIn
	}
	if err := required("username", req.Username); err != nil {
		return models.Notice{}, err
	}
	if err := required("email", req.Email); err != nil {
		return models.Notice{}, err
	}
	return models.Notice{Title: "Profile updated", Description: "Your profile has been successfully updated."}, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(base36)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			idx = big.NewInt(0)
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b)
}
