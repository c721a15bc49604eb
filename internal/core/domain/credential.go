package domain

import (
	"errors"
	"time"
)

var ErrMintingFailure = errors.New("credential minting failed")
var ErrRateLimited = errors.New("issuance rate limit exceeded")

// AccessWindow bounds how long minted credentials remain valid.
// ExpiresAt never exceeds now + 1 hour after clamping.
type AccessWindow struct {
	ExpiresAt time.Time
}

// CloudCredential is a cloud-platform access token impersonating the
// target service account.
type CloudCredential struct {
	Token      string
	ExpireTime time.Time
}

// GatewayCredential is a signed claim set presented to the API gateway.
type GatewayCredential struct {
	Endpoint   string
	Token      string
	ExpireTime time.Time
}

// CredentialBundle is the pair of downstream credentials returned per
// request. Both sub-credentials share the same ExpireTime, derived from
// the same access window.
type CredentialBundle struct {
	Cloud   CloudCredential
	Gateway GatewayCredential
}
