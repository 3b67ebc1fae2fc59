package services

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotFound        = errors.New("not found")
	ErrCartEmpty       = errors.New("cart is empty")

	// Gating errors are advisory UI redirects, not access control.
	ErrNotLoggedIn = errors.New("please log in to continue")
	ErrForbidden   = errors.New("you do not have access to this page")
)

// ValidationError reports a missing or malformed form field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}
