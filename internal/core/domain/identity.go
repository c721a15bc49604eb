package domain

import "errors"

var ErrMissingCredential = errors.New("missing credential")
var ErrInvalidCredential = errors.New("invalid credential")
var ErrUnknownProvider = errors.New("unknown auth provider")

// Provider identifies the upstream sign-in mechanism reported by the
// identity provider. Anonymous callers are guests; password callers are admins.
type Provider string

const (
	ProviderAnonymous Provider = "anonymous"
	ProviderPassword  Provider = "password"
)

// VerifiedIdentity is the outcome of verifying a bearer assertion.
// It exists only for the duration of a request.
type VerifiedIdentity struct {
	SubjectID string
	Provider  Provider
}
