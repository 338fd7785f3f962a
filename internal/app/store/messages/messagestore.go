// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"time"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_messages")}
}

// Append stores one message and returns it with its generated id.
func (s *Store) Append(ctx context.Context, conversationID string, authorID primitive.ObjectID, body string) (models.GroupMessage, error) {
	msg := models.GroupMessage{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		AuthorID:       authorID,
		Body:           body,
		SentAt:         time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return models.GroupMessage{}, err
	}
	return msg, nil
}

// ListRecent returns up to limit messages for the conversation, newest
// first.
func (s *Store) ListRecent(ctx context.Context, conversationID string, limit int64) ([]models.GroupMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.GroupMessage
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
