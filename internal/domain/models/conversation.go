// internal/domain/models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupConversation is the chat channel derived from a group. It is
// created at most once per group, the first time any group-chat
// operation runs, and its member list is a snapshot taken at that
// moment. Later membership changes on the group do not flow into the
// conversation; that drift is intended behavior, not a sync bug.
type GroupConversation struct {
	ID        string               `bson:"_id" json:"id"`
	GroupID   primitive.ObjectID   `bson:"group_id" json:"group_id"`
	MemberIDs []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

// HasMember reports whether userID was in the membership snapshot.
func (c *GroupConversation) HasMember(userID primitive.ObjectID) bool {
	return containsID(c.MemberIDs, userID)
}

// GroupMessage is a single message in a group conversation.
type GroupMessage struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	ConversationID string             `bson:"conversation_id" json:"conversation_id"`
	AuthorID       primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body           string             `bson:"body" json:"body"`
	SentAt         time.Time          `bson:"sent_at" json:"sent_at"`
}
