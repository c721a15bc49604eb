package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

func render(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.Nop())
	handler(err, c)
	return rec
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		body string
	}{
		{domain.ErrMissingCredential, http.StatusUnauthorized, "Authentication required"},
		{domain.ErrInvalidCredential, http.StatusForbidden, "Authentication failed"},
		{domain.ErrUnknownProvider, http.StatusForbidden, "Authentication failed"},
		{domain.ErrMissingRoomID, http.StatusBadRequest, "Room ID is missing"},
		{domain.ErrRoomNotFound, http.StatusForbidden, "You're not allowed in this room"},
		{domain.ErrGuestMismatch, http.StatusForbidden, "You're not allowed in this room"},
		{domain.ErrNoExpiry, http.StatusForbidden, "You're not allowed in this room"},
		{domain.ErrRoomExpired, http.StatusForbidden, "You're not allowed in this room"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "Too many requests"},
		{domain.ErrMintingFailure, http.StatusBadGateway, "Failed to issue credentials"},
	}

	for _, tc := range cases {
		rec := render(t, tc.err)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if got := rec.Body.String(); got != tc.body {
			t.Fatalf("%v: expected body %q, got %q", tc.err, tc.body, got)
		}
	}
}

// Wrapped domain errors must map the same as bare sentinels.
func TestErrorHandler_WrappedError(t *testing.T) {
	rec := render(t, fmt.Errorf("%w: provider said no", domain.ErrMintingFailure))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for wrapped minting failure, got %d", rec.Code)
	}
}

// Denial bodies are identical across all room authorization failures so a
// probe cannot distinguish a missing room from a claimed or expired one.
func TestErrorHandler_NoRoomStateLeaked(t *testing.T) {
	bodies := map[string]struct{}{}
	for _, err := range []error{domain.ErrRoomNotFound, domain.ErrGuestMismatch, domain.ErrNoExpiry, domain.ErrRoomExpired} {
		bodies[render(t, err).Body.String()] = struct{}{}
	}
	if len(bodies) != 1 {
		t.Fatalf("room denial bodies must be indistinguishable, got %v", bodies)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid payload") {
		t.Fatalf("expected echo message in body, got %q", rec.Body.String())
	}
}

func TestErrorHandler_UnexpectedError(t *testing.T) {
	rec := render(t, fmt.Errorf("mongo exploded"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal detail leaked to caller: %q", rec.Body.String())
	}
}
