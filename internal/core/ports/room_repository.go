package ports

import (
	"context"
	"time"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

// RoomRepository defines persistence operations for rooms.
type RoomRepository interface {
	// FindByID retrieves a room by its id. Returns domain.ErrRoomNotFound
	// when no such room exists.
	FindByID(ctx context.Context, roomID string) (*domain.Room, error)
	// Claim sets guestID and expiry on the room only if the room is still
	// unclaimed (no guest and no expiry). Returns the claimed room, or
	// domain.ErrRoomClaimed when a concurrent request claimed it first.
	Claim(ctx context.Context, roomID, guestID string, expiry time.Time) (*domain.Room, error)
}
