package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/darte/storefront/internal/catalog"
	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// UploadResult is the answer to a product upload submission. Until the fees
// are agreed to, only the fee notice is returned.
type UploadResult struct {
	RequiresConfirmation bool           `json:"requiresConfirmation"`
	Fees                 SellerFees     `json:"fees"`
	Notice               *models.Notice `json:"notice,omitempty"`
}

// UploadService handles the seller product upload form
type UploadService struct {
	writer  catalog.Writer // nil: uploads never reach the catalog
	metrics *metrics.AppMetrics
}

// NewUploadService creates an upload service; w may be nil
func NewUploadService(w catalog.Writer, m *metrics.AppMetrics) *UploadService {
	return &UploadService{writer: w, metrics: m}
}

// Fees returns the seller fee notice
func (s *UploadService) Fees() SellerFees {
	return sellerFees()
}

// CanUpload reports whether the user may see the upload form
func CanUpload(u *models.User) bool {
	return u != nil && (u.IsSeller || u.IsAdmin)
}

// Upload validates the draft. The first submission returns the fee notice;
// a submission with AgreeToFees set is acknowledged as pending approval.
func (s *UploadService) Upload(ctx context.Context, st *store.Store, draft models.ProductDraft) (*UploadResult, error) {
	if !CanUpload(st.CurrentUser()) {
		return nil, ErrForbidden
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	result := &UploadResult{Fees: sellerFees()}
	if !draft.AgreeToFees {
		result.RequiresConfirmation = true
		return result, nil
	}

	if s.writer != nil {
		if err := s.writer.CreateProduct(ctx, draft); err != nil {
			return nil, fmt.Errorf("failed to store product: %w", err)
		}
	}

	s.metrics.ProductUploads.Add(ctx, 1, s.metrics.Attrs(attribute.String("product_category", draft.Category)))
	logger.Info(ctx).Str("title", draft.Title).Str("category", draft.Category).Msg("product upload confirmed")

	result.Notice = &models.Notice{
		Title:       "Product uploaded!",
		Description: "Your product has been successfully uploaded and is pending approval.",
	}
	return result, nil
}

func validateDraft(d models.ProductDraft) error {
	for _, f := range []struct{ name, value string }{
		{"title", d.Title},
		{"description", d.Description},
		{"price", d.Price},
		{"category", d.Category},
		{"image", d.Image},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if _, err := strconv.ParseFloat(d.Price, 64); err != nil {
		return &ValidationError{Field: "price", Reason: "must be a number"}
	}
	if c, ok := models.ParseCategory(d.Category); !ok || c == models.CategoryAll {
		return &ValidationError{Field: "category", Reason: "must be one of the shop categories"}
	}
	return nil
}
