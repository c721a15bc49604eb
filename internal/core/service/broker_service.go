package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/core/domain"
	"github.com/chatbridge/token-broker/internal/core/ports"
)

// BrokerService composes the issuance pipeline per request: verify the
// assertion, map the provider to a target service account, resolve the
// access window (room-based for guests, fixed for admins), clamp it to
// the session ceiling, and mint the credential bundle. All failures are
// terminal for the request; nothing is retried here.
type BrokerService struct {
	verifier ports.IdentityVerifier
	rooms    ports.RoomAccessResolver
	minter   ports.TokenMinter
	limiter  ports.MintLimiter
	clock    ExpiryClock
	accounts map[domain.Provider]string
	log      zerolog.Logger
}

// NewBrokerService wires the broker pipeline. accounts maps each sign-in
// provider to the service account impersonated for its callers. limiter
// may be nil, in which case no issuance rate limit is applied.
func NewBrokerService(
	verifier ports.IdentityVerifier,
	rooms ports.RoomAccessResolver,
	minter ports.TokenMinter,
	limiter ports.MintLimiter,
	clock ExpiryClock,
	accounts map[domain.Provider]string,
	log zerolog.Logger,
) *BrokerService {
	return &BrokerService{
		verifier: verifier,
		rooms:    rooms,
		minter:   minter,
		limiter:  limiter,
		clock:    clock,
		accounts: accounts,
		log:      log,
	}
}

func (s *BrokerService) Issue(ctx context.Context, input ports.IssueInput) (*ports.IssueResult, error) {
	if input.Assertion == "" {
		return nil, domain.ErrMissingCredential
	}

	identity, err := s.verifier.Verify(ctx, input.Assertion)
	if err != nil {
		return nil, err
	}

	account, ok := s.accounts[identity.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, identity.Provider)
	}

	s.log.Info().
		Str("subject", identity.SubjectID).
		Str("provider", string(identity.Provider)).
		Msg("identity verified")

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, identity.SubjectID)
		if err != nil {
			// Fail open: the limiter is protection, not authorization.
			s.log.Warn().Err(err).Str("subject", identity.SubjectID).Msg("rate limit check failed, allowing request")
		} else if !allowed {
			return nil, domain.ErrRateLimited
		}
	}

	now := s.clock.Now()
	var window domain.AccessWindow
	if identity.Provider == domain.ProviderAnonymous {
		if input.RoomID == "" {
			return nil, domain.ErrMissingRoomID
		}
		window, err = s.rooms.ResolveGuestWindow(ctx, input.RoomID, identity.SubjectID)
		if err != nil {
			return nil, err
		}
	} else {
		// Admin sessions get the full ceiling, no room lookup.
		window = domain.AccessWindow{ExpiresAt: s.clock.SessionCeiling(now)}
	}

	window.ExpiresAt = s.clock.Clamp(window.ExpiresAt, s.clock.SessionCeiling(now))

	bundle, err := s.minter.Mint(ctx, window, account)
	if err != nil {
		return nil, err
	}

	return &ports.IssueResult{Bundle: *bundle, Identity: *identity}, nil
}
