// Package chatbridge provisions the conversation attached to a group
// and gates message traffic on the conversation's member snapshot.
//
// A conversation is created at most once per group, lazily, on first
// use. Its member list is a snapshot taken at creation time and is
// deliberately never updated afterwards; later membership changes on
// the group do not flow into an existing conversation.
package chatbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewhub-app/crewhub/internal/app/governance"
	conversationstore "github.com/crewhub-app/crewhub/internal/app/store/conversations"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	messagestore "github.com/crewhub-app/crewhub/internal/app/store/messages"
	"github.com/crewhub-app/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotConversationMember rejects senders and readers outside the
// conversation's member snapshot.
var ErrNotConversationMember = errors.New("not a member of this conversation")

// ErrEmptyMessage rejects blank message bodies.
var ErrEmptyMessage = errors.New("message body is empty")

type Bridge struct {
	groups        *groupstore.Store
	conversations *conversationstore.Store
	messages      *messagestore.Store
	log           *zap.Logger
}

func New(groups *groupstore.Store, conversations *conversationstore.Store, messages *messagestore.Store, logger *zap.Logger) *Bridge {
	return &Bridge{
		groups:        groups,
		conversations: conversations,
		messages:      messages,
		log:           logger,
	}
}

// EnsureConversation returns the group's conversation, creating it from
// the group's current membership if none exists yet. Concurrent callers
// for the same group all converge on a single conversation.
func (b *Bridge) EnsureConversation(ctx context.Context, groupID primitive.ObjectID) (models.GroupConversation, error) {
	conv, err := b.conversations.GetByGroup(ctx, groupID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupConversation{}, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err)
	}

	g, err := b.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupConversation{}, governance.ErrNotFound
		}
		return models.GroupConversation{}, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err)
	}

	conv, err = b.conversations.Create(ctx, groupID, g.MemberIDs)
	if err != nil {
		return models.GroupConversation{}, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err)
	}
	b.log.Info("conversation created",
		zap.String("group_id", groupID.Hex()),
		zap.String("conversation_id", conv.ID),
		zap.Int("members", len(conv.MemberIDs)))
	return conv, nil
}

// PostMessage appends a message to the group's conversation. The author
// must belong to the conversation's member snapshot; group membership
// acquired after the conversation was created does not grant access.
func (b *Bridge) PostMessage(ctx context.Context, groupID primitive.ObjectID, author primitive.ObjectID, body string) (models.GroupMessage, error) {
	if body == "" {
		return models.GroupMessage{}, ErrEmptyMessage
	}
	conv, err := b.EnsureConversation(ctx, groupID)
	if err != nil {
		return models.GroupMessage{}, err
	}
	if !conv.HasMember(author) {
		return models.GroupMessage{}, ErrNotConversationMember
	}
	msg, err := b.messages.Append(ctx, conv.ID, author, body)
	if err != nil {
		return models.GroupMessage{}, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err)
	}
	return msg, nil
}

// ListMessages returns the most recent messages in the group's
// conversation, newest first. Readers must be in the member snapshot.
func (b *Bridge) ListMessages(ctx context.Context, groupID primitive.ObjectID, reader primitive.ObjectID, limit int64) ([]models.GroupMessage, error) {
	conv, err := b.EnsureConversation(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !conv.HasMember(reader) {
		return nil, ErrNotConversationMember
	}
	msgs, err := b.messages.ListRecent(ctx, conv.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err)
	}
	return msgs, nil
}
