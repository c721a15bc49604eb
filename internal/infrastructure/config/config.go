package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// ProjectID is the cloud project hosting the impersonated service accounts.
	ProjectID string `env:"GCP_PROJECT, required"`
	// GatewayAudience is the API gateway URL used both as the signed token's
	// audience and as the endpoint returned to the caller.
	GatewayAudience string `env:"API_GATEWAY_AUDIENCE, required"`
	// GuestServiceAccount and AdminServiceAccount override the accounts
	// derived from ProjectID when set.
	GuestServiceAccount string `env:"GUEST_SERVICE_ACCOUNT"`
	AdminServiceAccount string `env:"ADMIN_SERVICE_ACCOUNT"`

	CORSOrigin string `env:"CORS_ORIGIN, default=*"`

	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=token_broker"`
}

type RedisConfig struct {
	// Addr left empty disables Redis-backed features (rate limiting).
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,  default=0"`
}

type RateLimitConfig struct {
	// Requests per subject per window. Zero disables the limiter.
	Requests      int `env:"RATE_LIMIT_REQUESTS, default=30"`
	WindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS, default=60"`
}

// GuestAccount returns the service account impersonated for anonymous callers.
func (c *Config) GuestAccount() string {
	if c.GuestServiceAccount != "" {
		return c.GuestServiceAccount
	}
	return fmt.Sprintf("client-guest@%s.iam.gserviceaccount.com", c.ProjectID)
}

// AdminAccount returns the service account impersonated for admin callers.
func (c *Config) AdminAccount() string {
	if c.AdminServiceAccount != "" {
		return c.AdminServiceAccount
	}
	return fmt.Sprintf("client-admin@%s.iam.gserviceaccount.com", c.ProjectID)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
