package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatbridge/token-broker/internal/api/metrics"
	"github.com/chatbridge/token-broker/internal/core/ports"
)

// TokenHandler handles credential issuance requests.
type TokenHandler struct {
	broker ports.BrokerService
}

func NewTokenHandler(broker ports.BrokerService) *TokenHandler {
	return &TokenHandler{broker: broker}
}

type tokenRequest struct {
	RoomID string `json:"roomId" validate:"omitempty,max=128"`
}

type cloudPayload struct {
	Token      string `json:"token"`
	ExpireTime int64  `json:"expireTime"`
}

type gatewayPayload struct {
	Endpoint   string `json:"endpoint"`
	Token      string `json:"token"`
	ExpireTime int64  `json:"expireTime"`
}

type tokenResponse struct {
	GCP        cloudPayload   `json:"gcp"`
	APIGateway gatewayPayload `json:"apiGateway"`
}

// Issue handles POST / — verifies the caller and returns the credential bundle.
//
// @Summary      Issue downstream credentials
// @Tags         broker
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      tokenRequest  true  "Room ID (guests only)"
// @Success      200   {object}  tokenResponse
// @Failure      400   {string}  string
// @Failure      401   {string}  string
// @Failure      403   {string}  string
// @Failure      502   {string}  string
// @Router       / [post]
func (h *TokenHandler) Issue(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.broker.Issue(c.Request().Context(), ports.IssueInput{
		Assertion: bearerAssertion(c.Request().Header),
		RoomID:    req.RoomID,
	})
	if err != nil {
		return err
	}

	provider := string(result.Identity.Provider)
	metrics.TokensIssuedTotal.WithLabelValues(provider).Inc()
	metrics.IssueDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	bundle := result.Bundle
	return c.JSON(http.StatusOK, tokenResponse{
		GCP: cloudPayload{
			Token:      bundle.Cloud.Token,
			ExpireTime: bundle.Cloud.ExpireTime.Unix(),
		},
		APIGateway: gatewayPayload{
			Endpoint:   bundle.Gateway.Endpoint,
			Token:      bundle.Gateway.Token,
			ExpireTime: bundle.Gateway.ExpireTime.Unix(),
		},
	})
}

// bearerAssertion extracts the bearer token, preferring
// x-forwarded-authorization: behind the API gateway the original
// Authorization header is replaced by the gateway's own, and the caller's
// token is forwarded under this header instead.
func bearerAssertion(h http.Header) string {
	raw := h.Get("X-Forwarded-Authorization")
	if raw == "" {
		raw = h.Get(echo.HeaderAuthorization)
	}
	if raw == "" {
		return ""
	}

	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
