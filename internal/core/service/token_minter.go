package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chatbridge/token-broker/internal/core/domain"
	"github.com/chatbridge/token-broker/internal/core/ports"
)

// MinterService mints the two downstream credentials for an authorized
// window: a cloud access token and a signed gateway token, issued
// concurrently against independent endpoints of the credentials API.
type MinterService struct {
	client   ports.CredentialClient
	audience string
	clock    ExpiryClock
	log      zerolog.Logger
}

func NewMinterService(client ports.CredentialClient, gatewayAudience string, clock ExpiryClock, log zerolog.Logger) *MinterService {
	return &MinterService{client: client, audience: gatewayAudience, clock: clock, log: log}
}

// gatewayClaims is the claim set signed for the API gateway. aud is a
// plain string, which is what the gateway expects.
type gatewayClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Mint issues both credentials concurrently. Either both succeed or the
// whole operation fails with domain.ErrMintingFailure; callers never see a
// partial bundle. A failed leg does not cancel the other, both calls run
// to completion independently.
func (s *MinterService) Mint(ctx context.Context, window domain.AccessWindow, serviceAccount string) (*domain.CredentialBundle, error) {
	now := s.clock.Now()
	lifetime := window.ExpiresAt.Sub(now)
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: window already expired", domain.ErrMintingFailure)
	}

	payload, err := json.Marshal(gatewayClaims{
		Issuer:    serviceAccount,
		Subject:   serviceAccount,
		Audience:  s.audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: window.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal gateway claims: %v", domain.ErrMintingFailure, err)
	}

	var accessToken, gatewayToken string
	var g errgroup.Group
	g.Go(func() error {
		var err error
		accessToken, err = s.client.GenerateAccessToken(ctx, serviceAccount, lifetime)
		return err
	})
	g.Go(func() error {
		var err error
		gatewayToken, err = s.client.SignJWT(ctx, serviceAccount, payload)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("service_account", serviceAccount).Msg("credential minting failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrMintingFailure, err)
	}

	s.log.Info().
		Str("service_account", serviceAccount).
		Time("expire_time", window.ExpiresAt).
		Msg("credentials minted")

	return &domain.CredentialBundle{
		Cloud: domain.CloudCredential{
			Token:      accessToken,
			ExpireTime: window.ExpiresAt,
		},
		Gateway: domain.GatewayCredential{
			Endpoint:   s.audience,
			Token:      gatewayToken,
			ExpireTime: window.ExpiresAt,
		},
	}, nil
}
