// internal/app/store/conversations/conversationstore.go
package conversationstore

import (
	"context"
	"time"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_conversations")}
}

// GetByGroup returns the conversation for groupID.
// Returns mongo.ErrNoDocuments if none has been created yet.
func (s *Store) GetByGroup(ctx context.Context, groupID primitive.ObjectID) (models.GroupConversation, error) {
	var conv models.GroupConversation
	if err := s.c.FindOne(ctx, bson.M{"group_id": groupID}).Decode(&conv); err != nil {
		return models.GroupConversation{}, err
	}
	return conv, nil
}

// Create snapshots the given membership into a new conversation. The
// group_id unique index makes creation at-most-once: when two callers
// race, the loser gets the winner's document back, never an error.
func (s *Store) Create(ctx context.Context, groupID primitive.ObjectID, memberIDs []primitive.ObjectID) (models.GroupConversation, error) {
	conv := models.GroupConversation{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		MemberIDs: append([]primitive.ObjectID(nil), memberIDs...),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, conv); err != nil {
		if wafflemongo.IsDup(err) {
			return s.GetByGroup(ctx, groupID)
		}
		return models.GroupConversation{}, err
	}
	return conv, nil
}
