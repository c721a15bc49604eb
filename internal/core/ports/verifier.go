package ports

import (
	"context"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

// IdentityVerifier validates an inbound bearer assertion against the
// external identity provider and extracts the stable subject identifier
// plus the sign-in provider tag.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*domain.VerifiedIdentity, error)
}
