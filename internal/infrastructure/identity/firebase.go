// Package identity verifies inbound bearer assertions. Tokens are checked
// offline against the issuer's JWKS rather than through the provider's
// admin SDK, which keeps verification a pure signature check.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

// securetokenJWKS serves the public keys Firebase signs ID tokens with.
const securetokenJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// Verifier validates ID tokens and maps them to a VerifiedIdentity.
type Verifier struct {
	keyfunc jwt.Keyfunc
	opts    []jwt.ParserOption
	log     zerolog.Logger
}

// NewVerifier builds a Verifier from an arbitrary keyfunc and parser
// options. Used directly in tests; production code goes through
// NewFirebaseVerifier.
func NewVerifier(kf jwt.Keyfunc, log zerolog.Logger, opts ...jwt.ParserOption) *Verifier {
	return &Verifier{keyfunc: kf, opts: opts, log: log}
}

// NewFirebaseVerifier builds a Verifier for Firebase ID tokens of the given
// project, with key rotation handled by a background JWKS refresh.
func NewFirebaseVerifier(ctx context.Context, projectID string, log zerolog.Logger) (*Verifier, error) {
	jwks, err := keyfunc.Get(securetokenJWKS, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Msg("securetoken jwks refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch securetoken jwks: %w", err)
	}

	return NewVerifier(jwks.Keyfunc, log,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer("https://securetoken.google.com/"+projectID),
		jwt.WithAudience(projectID),
		jwt.WithExpirationRequired(),
	), nil
}

// idTokenClaims carries the registered claims plus the sign-in provider
// tag Firebase nests under the "firebase" claim.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// Verify checks the assertion's signature and standard claims. Any
// rejection is reported as domain.ErrInvalidCredential; the underlying
// parser error is logged, never surfaced to the caller.
func (v *Verifier) Verify(ctx context.Context, assertion string) (*domain.VerifiedIdentity, error) {
	if assertion == "" {
		return nil, domain.ErrMissingCredential
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, v.keyfunc, v.opts...)
	if err != nil || !token.Valid {
		v.log.Info().Err(err).Msg("id token rejected")
		return nil, domain.ErrInvalidCredential
	}
	if claims.Subject == "" {
		v.log.Info().Msg("id token has no subject")
		return nil, domain.ErrInvalidCredential
	}

	return &domain.VerifiedIdentity{
		SubjectID: claims.Subject,
		Provider:  domain.Provider(claims.Firebase.SignInProvider),
	}, nil
}
