// Package gcp wraps the IAM Credentials API calls used to mint downstream
// credentials by impersonating a target service account.
package gcp

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/iamcredentials/v1"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type IAMCredentialsClient struct {
	svc *iamcredentials.Service
}

// NewIAMCredentialsClient builds a client using application default
// credentials unless overridden by opts.
func NewIAMCredentialsClient(ctx context.Context, opts ...option.ClientOption) (*IAMCredentialsClient, error) {
	svc, err := iamcredentials.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("iamcredentials service: %w", err)
	}
	return &IAMCredentialsClient{svc: svc}, nil
}

// GenerateAccessToken requests a cloud-platform scoped access token for the
// service account, valid for the given lifetime.
func (c *IAMCredentialsClient) GenerateAccessToken(ctx context.Context, serviceAccount string, lifetime time.Duration) (string, error) {
	req := &iamcredentials.GenerateAccessTokenRequest{
		Scope:    []string{cloudPlatformScope},
		Lifetime: fmt.Sprintf("%ds", int64(lifetime.Seconds())),
	}
	resp, err := c.svc.Projects.ServiceAccounts.GenerateAccessToken(resourceName(serviceAccount), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return resp.AccessToken, nil
}

// SignJWT signs the JSON claim set with the service account's system-managed key.
func (c *IAMCredentialsClient) SignJWT(ctx context.Context, serviceAccount string, payload []byte) (string, error) {
	req := &iamcredentials.SignJwtRequest{Payload: string(payload)}
	resp, err := c.svc.Projects.ServiceAccounts.SignJwt(resourceName(serviceAccount), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return resp.SignedJwt, nil
}

func resourceName(serviceAccount string) string {
	return "projects/-/serviceAccounts/" + serviceAccount
}
