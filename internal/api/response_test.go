package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/darte/storefront/internal/messaging"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&services.ValidationError{Field: "email", Reason: "is required"}, http.StatusBadRequest},
		{&badRequestError{err: errors.New("unexpected EOF")}, http.StatusBadRequest},
		{services.ErrCartEmpty, http.StatusBadRequest},
		{services.ErrNotLoggedIn, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("lookup: %w", services.ErrProductNotFound), http.StatusNotFound},
		{services.ErrNotFound, http.StatusNotFound},
		{messaging.ErrClosed, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWriteErrorMasksInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("dsn password=hunter2"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestMessageToEndedSessionConflicts(t *testing.T) {
	s := newTestServer(t, true)

	code, _ := s.do(t, http.MethodGet, "/message/urban-threads", nil)
	require.Equal(t, http.StatusOK, code)

	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	var sessionID string
	for _, c := range s.client.Jar.Cookies(u) {
		if c.Name == "darte_session" {
			sessionID = c.Value
		}
	}
	sess, ok := s.sessions.Get(sessionID)
	require.True(t, ok)
	sess.Threads.CloseAll()

	code, _ = s.do(t, http.MethodPost, "/message/urban-threads", models.SendMessageRequest{Content: "still there?"})
	assert.Equal(t, http.StatusConflict, code)
}
