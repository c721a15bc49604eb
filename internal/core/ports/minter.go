package ports

import (
	"context"
	"time"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

// CredentialClient is the low-level client for the cloud IAM credentials
// API. Both calls impersonate the target service account.
type CredentialClient interface {
	// GenerateAccessToken requests a cloud-platform scoped access token
	// with the given lifetime.
	GenerateAccessToken(ctx context.Context, serviceAccount string, lifetime time.Duration) (string, error)
	// SignJWT signs the given JSON claim set with the service account's key.
	SignJWT(ctx context.Context, serviceAccount string, payload []byte) (string, error)
}

// TokenMinter exchanges an authorized access window for the credential
// bundle. Either both credentials are minted or none is.
type TokenMinter interface {
	Mint(ctx context.Context, window domain.AccessWindow, serviceAccount string) (*domain.CredentialBundle, error)
}
