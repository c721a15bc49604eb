package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

type stubCredentialClient struct {
	accessToken   string
	accessErr     error
	signedJWT     string
	signErr       error
	gotLifetime   time.Duration
	gotPayload    []byte
	accessAccount string
	signAccount   string
}

func (c *stubCredentialClient) GenerateAccessToken(_ context.Context, serviceAccount string, lifetime time.Duration) (string, error) {
	c.accessAccount = serviceAccount
	c.gotLifetime = lifetime
	return c.accessToken, c.accessErr
}

func (c *stubCredentialClient) SignJWT(_ context.Context, serviceAccount string, payload []byte) (string, error) {
	c.signAccount = serviceAccount
	c.gotPayload = payload
	return c.signedJWT, c.signErr
}

const testAudience = "https://gateway.example.com"
const testAccount = "guest-client@proj.iam.gserviceaccount.com"

func TestMinter_Success(t *testing.T) {
	client := &stubCredentialClient{accessToken: "access-token", signedJWT: "signed-jwt"}
	minter := NewMinterService(client, testAudience, fixedClock(testNow), zerolog.Nop())

	window := domain.AccessWindow{ExpiresAt: testNow.Add(time.Hour)}
	bundle, err := minter.Mint(context.Background(), window, testAccount)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if bundle.Cloud.Token != "access-token" {
		t.Fatalf("unexpected cloud token: %q", bundle.Cloud.Token)
	}
	if bundle.Gateway.Token != "signed-jwt" {
		t.Fatalf("unexpected gateway token: %q", bundle.Gateway.Token)
	}
	if bundle.Gateway.Endpoint != testAudience {
		t.Fatalf("unexpected gateway endpoint: %q", bundle.Gateway.Endpoint)
	}
	if !bundle.Cloud.ExpireTime.Equal(bundle.Gateway.ExpireTime) {
		t.Fatalf("expire times must match: %v vs %v", bundle.Cloud.ExpireTime, bundle.Gateway.ExpireTime)
	}
	if !bundle.Cloud.ExpireTime.Equal(window.ExpiresAt) {
		t.Fatalf("expire time must come from the window, got %v", bundle.Cloud.ExpireTime)
	}
	if client.gotLifetime != time.Hour {
		t.Fatalf("expected 1h lifetime, got %v", client.gotLifetime)
	}
	if client.accessAccount != testAccount || client.signAccount != testAccount {
		t.Fatalf("both calls must impersonate the target account")
	}
}

func TestMinter_GatewayClaims(t *testing.T) {
	client := &stubCredentialClient{accessToken: "a", signedJWT: "s"}
	minter := NewMinterService(client, testAudience, fixedClock(testNow), zerolog.Nop())

	window := domain.AccessWindow{ExpiresAt: testNow.Add(45 * time.Minute)}
	if _, err := minter.Mint(context.Background(), window, testAccount); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(client.gotPayload, &claims); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if claims["iss"] != testAccount || claims["sub"] != testAccount {
		t.Fatalf("issuer and subject must be the service account: %v", claims)
	}
	if claims["aud"] != testAudience {
		t.Fatalf("audience must be the gateway endpoint: %v", claims["aud"])
	}
	if int64(claims["iat"].(float64)) != testNow.Unix() {
		t.Fatalf("iat must be now: %v", claims["iat"])
	}
	if int64(claims["exp"].(float64)) != window.ExpiresAt.Unix() {
		t.Fatalf("exp must be the window expiry: %v", claims["exp"])
	}
}

func TestMinter_AccessTokenFailure(t *testing.T) {
	client := &stubCredentialClient{accessErr: errors.New("iam unavailable"), signedJWT: "s"}
	minter := NewMinterService(client, testAudience, fixedClock(testNow), zerolog.Nop())

	bundle, err := minter.Mint(context.Background(), domain.AccessWindow{ExpiresAt: testNow.Add(time.Hour)}, testAccount)
	if !errors.Is(err, domain.ErrMintingFailure) {
		t.Fatalf("expected ErrMintingFailure, got %v", err)
	}
	if bundle != nil {
		t.Fatalf("no partial bundle may be returned, got %+v", bundle)
	}
}

func TestMinter_SignFailure(t *testing.T) {
	client := &stubCredentialClient{accessToken: "a", signErr: errors.New("sign denied")}
	minter := NewMinterService(client, testAudience, fixedClock(testNow), zerolog.Nop())

	bundle, err := minter.Mint(context.Background(), domain.AccessWindow{ExpiresAt: testNow.Add(time.Hour)}, testAccount)
	if !errors.Is(err, domain.ErrMintingFailure) {
		t.Fatalf("expected ErrMintingFailure, got %v", err)
	}
	if bundle != nil {
		t.Fatalf("no partial bundle may be returned, got %+v", bundle)
	}
}

func TestMinter_ExpiredWindow(t *testing.T) {
	client := &stubCredentialClient{}
	minter := NewMinterService(client, testAudience, fixedClock(testNow), zerolog.Nop())

	if _, err := minter.Mint(context.Background(), domain.AccessWindow{ExpiresAt: testNow}, testAccount); !errors.Is(err, domain.ErrMintingFailure) {
		t.Fatalf("expected ErrMintingFailure for non-positive lifetime, got %v", err)
	}
	if client.accessAccount != "" || client.signAccount != "" {
		t.Fatalf("no provider call may be made for an expired window")
	}
}
