package services

import (
	"context"
	"strconv"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// Seller terms shown on the onboarding and upload pages
const (
	CommissionPercent = 7
	FreeMonths        = 3
)

// Benefit is one selling point of the seller program
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SellerOnboarding is the become-a-seller page
type SellerOnboarding struct {
	Highlights []string  `json:"highlights"`
	Benefits   []Benefit `json:"benefits"`
	Steps      []string  `json:"steps"`
}

// SellerFees is the fee notice shown before an upload is confirmed
type SellerFees struct {
	CommissionPercent int    `json:"commissionPercent"`
	FreeMonths        int    `json:"freeMonths"`
	Offer             string `json:"offer"`
}

func sellerFees() SellerFees {
	return SellerFees{
		CommissionPercent: CommissionPercent,
		FreeMonths:        FreeMonths,
		Offer:             "First " + strconv.Itoa(FreeMonths) + " months absolutely free! Start selling without any upfront costs.",
	}
}

// SellerService handles seller onboarding. Applications are acknowledged
// but not recorded anywhere.
type SellerService struct {
	metrics *metrics.AppMetrics
}

// NewSellerService creates a new seller service
func NewSellerService(m *metrics.AppMetrics) *SellerService {
	return &SellerService{metrics: m}
}

// Onboarding returns the static seller program content
func (s *SellerService) Onboarding() SellerOnboarding {
	return SellerOnboarding{
		Highlights: []string{
			"First " + strconv.Itoa(FreeMonths) + " months FREE",
			"Only " + strconv.Itoa(CommissionPercent) + "% commission",
		},
		Benefits: []Benefit{
			{Title: "Earn More", Description: "Keep " + strconv.Itoa(100-CommissionPercent) + "% of your sales with our low " + strconv.Itoa(CommissionPercent) + "% commission rate"},
			{Title: "Grow Your Business", Description: "Access to thousands of potential customers daily"},
			{Title: "Secure Platform", Description: "Protected payments and buyer-seller protection"},
			{Title: "Build Your Brand", Description: "Create a trusted seller profile with customer reviews"},
		},
		Steps: []string{
			"Fill out the application form below",
			"Wait for admin approval (usually 24-48 hours)",
			"Complete your seller profile",
			"Start uploading and selling your products",
		},
	}
}

// Apply validates a seller application and returns the confirmation. A blank
// business email defaults to the signed-in user's.
func (s *SellerService) Apply(ctx context.Context, st *store.Store, app models.SellerApplication) (models.Notice, error) {
	username := ""
	if u := st.CurrentUser(); u != nil {
		username = u.Username
		if app.Email == "" {
			app.Email = u.Email
		}
	}

	if err := required("businessName", app.BusinessName); err != nil {
		return models.Notice{}, err
	}
	if err := required("description", app.Description); err != nil {
		return models.Notice{}, err
	}
	s.metrics.SellerApplications.Add(ctx, 1, s.metrics.Attrs(attribute.Bool("logged_in", username != "")))
	logger.Info(ctx).Str("business_name", app.BusinessName).Str("username", username).Str("email", app.Email).Msg("seller application submitted")

	return models.Notice{
		Title:       "Application submitted!",
		Description: "Your seller application has been submitted and is under review.",
	}, nil
}
