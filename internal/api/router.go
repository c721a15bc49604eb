package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatbridge/token-broker/internal/api/handler"
	"github.com/chatbridge/token-broker/internal/core/ports"
	"github.com/chatbridge/token-broker/internal/infrastructure/http/handlers"
)

// RouterConfig carries the wiring the router needs beyond the broker itself.
type RouterConfig struct {
	CORSOrigin string
}

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when Redis is not configured.
func NewRouter(broker ports.BrokerService, db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		MaxAge:       3600,
	}))
	e.Use(echoprometheus.NewMiddleware("token_broker"))

	// --- Broker ---
	tokenHandler := handler.NewTokenHandler(broker)
	e.POST("/", tokenHandler.Issue)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
