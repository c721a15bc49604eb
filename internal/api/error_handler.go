package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/api/metrics"
	"github.com/chatbridge/token-broker/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the broker's domain errors to their HTTP status codes.
//   - Renders a plain-text body. Authorization denials get a generic
//     message so probes learn nothing about room state; the real cause is
//     only logged server-side.
//   - Counts denials by reason.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, reason := resolveError(err, log, c)
		if reason != "" {
			metrics.AccessDeniedTotal.WithLabelValues(reason).Inc()
		}
		_ = c.String(code, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (code int, msg, reason string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), ""
	}

	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusUnauthorized, "Authentication required", "missing_credential"
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusForbidden, "Authentication failed", "invalid_credential"
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusForbidden, "Authentication failed", "unknown_provider"
	case errors.Is(err, domain.ErrMissingRoomID):
		return http.StatusBadRequest, "Room ID is missing", "missing_room_id"
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusForbidden, "You're not allowed in this room", "room_not_found"
	case errors.Is(err, domain.ErrGuestMismatch):
		return http.StatusForbidden, "You're not allowed in this room", "guest_mismatch"
	case errors.Is(err, domain.ErrNoExpiry):
		return http.StatusForbidden, "You're not allowed in this room", "no_expiry"
	case errors.Is(err, domain.ErrRoomExpired):
		return http.StatusForbidden, "You're not allowed in this room", "room_expired"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests", "rate_limited"
	case errors.Is(err, domain.ErrMintingFailure):
		log.Error().Err(err).Msg("downstream minting failed")
		return http.StatusBadGateway, "Failed to issue credentials", "minting_failure"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error", ""
}
