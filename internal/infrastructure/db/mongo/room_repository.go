package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatbridge/token-broker/internal/core/domain"
)

const roomCollection = "rooms"

type RoomRepository struct {
	coll *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{coll: db.Collection(roomCollection)}
}

// roomDoc mirrors the document written by the admin frontend: expiry is
// stored as epoch milliseconds.
type roomDoc struct {
	ID         string `bson:"_id"`
	GuestID    string `bson:"guest_id,omitempty"`
	ExpiryDate int64  `bson:"expiry_date,omitempty"`
}

func (d roomDoc) toDomain() *domain.Room {
	room := &domain.Room{ID: d.ID, GuestID: d.GuestID}
	if d.ExpiryDate != 0 {
		expiry := time.UnixMilli(d.ExpiryDate).UTC()
		room.ExpiryDate = &expiry
	}
	return room
}

// FindByID retrieves a room document by id.
func (r *RoomRepository) FindByID(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roomDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return doc.toDomain(), nil
}

// Claim atomically sets the guest and expiry on a still-unclaimed room.
// The filter guards against the first-touch race: when two requests both
// observe an unclaimed room, only one update matches; the loser gets
// domain.ErrRoomClaimed and must re-read.
func (r *RoomRepository) Claim(ctx context.Context, roomID, guestID string, expiry time.Time) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":         roomID,
		"guest_id":    bson.M{"$exists": false},
		"expiry_date": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"guest_id":    guestID,
		"expiry_date": expiry.UnixMilli(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc roomDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomClaimed
		}
		return nil, fmt.Errorf("claim room: %w", err)
	}
	return doc.toDomain(), nil
}
