package domain

import (
	"errors"
	"time"
)

var ErrMissingRoomID = errors.New("room id is missing")
var ErrRoomNotFound = errors.New("room not found")
var ErrGuestMismatch = errors.New("guest does not match room")
var ErrNoExpiry = errors.New("room has no expiry date")
var ErrRoomExpired = errors.New("room has expired")

// ErrRoomClaimed is returned by the repository when a conditional claim
// finds the room already claimed by a concurrent request.
var ErrRoomClaimed = errors.New("room already claimed")

// Room is a conversation room document. Admins pre-create rooms with no
// guest or expiry; the first guest request claims the room by setting both.
// Once set, GuestID and ExpiryDate are immutable for the life of the TTL.
type Room struct {
	ID         string     `json:"id" bson:"_id"`
	GuestID    string     `json:"guest_id,omitempty" bson:"guest_id,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
}

// Claimed reports whether a guest has already claimed this room.
func (r *Room) Claimed() bool {
	return r.GuestID != "" || r.ExpiryDate != nil
}
