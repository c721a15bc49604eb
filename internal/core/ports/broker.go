package ports

import (
	"context"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

// RoomAccessResolver authorizes a guest subject for a room and returns the
// pre-clamp access window.
type RoomAccessResolver interface {
	ResolveGuestWindow(ctx context.Context, roomID, subjectID string) (domain.AccessWindow, error)
}

// MintLimiter bounds how often a single subject may request credentials.
type MintLimiter interface {
	// Allow reports whether the subject is within its issuance budget.
	Allow(ctx context.Context, subjectID string) (bool, error)
}

// IssueInput carries the raw request material for one issuance.
type IssueInput struct {
	// Assertion is the opaque bearer credential, already stripped of the
	// "Bearer " prefix. Empty means the caller sent none.
	Assertion string
	// RoomID is required for anonymous (guest) callers, ignored for admins.
	RoomID string
}

// IssueResult is the successful outcome of one issuance.
type IssueResult struct {
	Bundle   domain.CredentialBundle
	Identity domain.VerifiedIdentity
}

// BrokerService decides access and mints the credential bundle.
type BrokerService interface {
	Issue(ctx context.Context, input IssueInput) (*IssueResult, error)
}
