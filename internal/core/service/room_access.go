package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatbridge/token-broker/internal/core/domain"
	"github.com/chatbridge/token-broker/internal/core/ports"
)

// RoomAccessService resolves whether a guest subject may access a room and
// for how long. The first guest request for an unclaimed room writes the
// guest id and a default expiry onto it; that is the only mutation this
// service performs.
type RoomAccessService struct {
	rooms ports.RoomRepository
	clock ExpiryClock
	log   zerolog.Logger
}

func NewRoomAccessService(rooms ports.RoomRepository, clock ExpiryClock, log zerolog.Logger) *RoomAccessService {
	return &RoomAccessService{rooms: rooms, clock: clock, log: log}
}

// ResolveGuestWindow checks, in order: room id present, room exists,
// first-touch claim if unclaimed, guest matches, expiry set, expiry in the
// future. The first violated check determines the returned error. The
// window is returned pre-clamp; the orchestrator applies the session ceiling.
func (s *RoomAccessService) ResolveGuestWindow(ctx context.Context, roomID, subjectID string) (domain.AccessWindow, error) {
	if roomID == "" {
		return domain.AccessWindow{}, domain.ErrMissingRoomID
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return domain.AccessWindow{}, err
	}

	if !room.Claimed() {
		expiry := s.clock.Now().Add(s.clock.DefaultRoomTTL())
		claimed, err := s.rooms.Claim(ctx, roomID, subjectID, expiry)
		switch {
		case err == nil:
			s.log.Info().
				Str("room_id", roomID).
				Str("guest_id", subjectID).
				Time("expiry", expiry).
				Msg("room claimed by first guest")
			room = claimed
		case errors.Is(err, domain.ErrRoomClaimed):
			// Lost the claim race; re-read and validate against whoever won.
			room, err = s.rooms.FindByID(ctx, roomID)
			if err != nil {
				return domain.AccessWindow{}, err
			}
		default:
			return domain.AccessWindow{}, fmt.Errorf("claim room %s: %w", roomID, err)
		}
	}

	if room.GuestID != subjectID {
		s.log.Warn().Str("room_id", roomID).Str("subject", subjectID).Msg("subject is not the guest in this room")
		return domain.AccessWindow{}, domain.ErrGuestMismatch
	}
	if room.ExpiryDate == nil {
		s.log.Warn().Str("room_id", roomID).Msg("room has no expiry date")
		return domain.AccessWindow{}, domain.ErrNoExpiry
	}
	if !room.ExpiryDate.After(s.clock.Now()) {
		return domain.AccessWindow{}, domain.ErrRoomExpired
	}

	return domain.AccessWindow{ExpiresAt: *room.ExpiryDate}, nil
}
