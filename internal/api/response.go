package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/darte/storefront/internal/messaging"
	"github.com/darte/storefront/internal/services"
	"github.com/darte/storefront/internal/session"
	"github.com/darte/storefront/pkg/logger"
)

const maxBodyBytes = 1 << 20

var errNoSession = errors.New("no session attached to request")

// sessionHandler is a handler that runs with the caller's session
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (a *App) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			writeError(w, r, errNoSession)
			return
		}
		h(w, r, sess)
	}
}

// badRequestError wraps a body that could not be decoded
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := map[string]string{"error": err.Error()}

	var verr *services.ValidationError
	var berr *badRequestError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body["field"] = verr.Field
	case errors.As(err, &berr), errors.Is(err, services.ErrCartEmpty):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotLoggedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, messaging.ErrClosed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("request failed")
		body["error"] = "internal server error"
	} else {
		logger.Debug(r.Context()).Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, status, body)
}
