package chatbridge_test

import (
	"errors"
	"testing"

	"github.com/crewhub-app/crewhub/internal/app/chatbridge"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	conversationstore "github.com/crewhub-app/crewhub/internal/app/store/conversations"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	messagestore "github.com/crewhub-app/crewhub/internal/app/store/messages"
	"github.com/crewhub-app/crewhub/internal/domain/models"
	"github.com/crewhub-app/crewhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newBridge(t *testing.T) (*chatbridge.Bridge, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureGroupIndexes(t, db)
	bridge := chatbridge.New(
		groupstore.New(db),
		conversationstore.New(db),
		messagestore.New(db),
		zap.NewNop(),
	)
	return bridge, testutil.NewFixtures(t, db)
}

func TestEnsureConversation_CreatesSnapshot(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := fx.CreateGroupWithMembers(ctx, "Book Club", owner, models.VisibilityPublic, member)

	conv, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureConversation failed: %v", err)
	}
	if conv.GroupID != group.ID {
		t.Errorf("group id: got %s, want %s", conv.GroupID.Hex(), group.ID.Hex())
	}
	if len(conv.MemberIDs) != 2 {
		t.Errorf("snapshot members: got %d, want 2", len(conv.MemberIDs))
	}
	if !conv.HasMember(owner) || !conv.HasMember(member) {
		t.Error("snapshot missing group members")
	}
}

func TestEnsureConversation_Idempotent(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Book Club", owner, models.VisibilityPublic)

	first, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one conversation, got %s and %s", first.ID, second.ID)
	}
}

func TestEnsureConversation_UnknownGroup(t *testing.T) {
	bridge, _ := newBridge(t)
	ctx := testutil.TestContext(t)

	_, err := bridge.EnsureConversation(ctx, primitive.NewObjectID())
	if !errors.Is(err, governance.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestEnsureConversation_SnapshotDoesNotTrackMembership is the core
// contract of the bridge: the conversation's member list is fixed at
// creation time and later joins do not widen it.
func TestEnsureConversation_SnapshotDoesNotTrackMembership(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Book Club", owner, models.VisibilityPublic)

	conv, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureConversation failed: %v", err)
	}

	// A user joins the group after the conversation exists.
	groups := groupstore.New(fx.DB())
	g, err := groups.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	latecomer := primitive.NewObjectID()
	g.MemberIDs = append(g.MemberIDs, latecomer)
	if _, err := groups.ReplaceVersioned(ctx, g); err != nil {
		t.Fatalf("ReplaceVersioned failed: %v", err)
	}

	again, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureConversation failed: %v", err)
	}
	if again.ID != conv.ID {
		t.Fatal("conversation was recreated")
	}
	if again.HasMember(latecomer) {
		t.Error("snapshot picked up a member who joined after creation")
	}

	if _, err := bridge.PostMessage(ctx, group.ID, latecomer, "hi all"); !errors.Is(err, chatbridge.ErrNotConversationMember) {
		t.Errorf("latecomer post: expected ErrNotConversationMember, got %v", err)
	}
}

func TestPostMessage_And_ListMessages(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := fx.CreateGroupWithMembers(ctx, "Book Club", owner, models.VisibilityPublic, member)

	if _, err := bridge.PostMessage(ctx, group.ID, owner, "first"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if _, err := bridge.PostMessage(ctx, group.ID, member, "second"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	msgs, err := bridge.ListMessages(ctx, group.ID, member, 10)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	// Newest first.
	if msgs[0].Body != "second" || msgs[1].Body != "first" {
		t.Errorf("order: got %q then %q", msgs[0].Body, msgs[1].Body)
	}
	if msgs[1].AuthorID != owner {
		t.Errorf("author: got %s, want %s", msgs[1].AuthorID.Hex(), owner.Hex())
	}
}

func TestPostMessage_EmptyBody(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Book Club", owner, models.VisibilityPublic)

	_, err := bridge.PostMessage(ctx, group.ID, owner, "")
	if !errors.Is(err, chatbridge.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestListMessages_NonMemberRejected(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Book Club", owner, models.VisibilityPublic)

	_, err := bridge.ListMessages(ctx, group.ID, primitive.NewObjectID(), 10)
	if !errors.Is(err, chatbridge.ErrNotConversationMember) {
		t.Errorf("expected ErrNotConversationMember, got %v", err)
	}
}

// Deleting a group leaves its conversation and messages behind as
// history, but a new conversation cannot be provisioned for it.
func TestEnsureConversation_AfterGroupDelete(t *testing.T) {
	bridge, fx := newBridge(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Book Club", owner, models.VisibilityPublic)

	conv, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureConversation failed: %v", err)
	}

	groups := groupstore.New(fx.DB())
	if _, err := groups.Delete(ctx, group.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Existing conversation still resolves.
	again, err := bridge.EnsureConversation(ctx, group.ID)
	if err != nil {
		t.Fatalf("expected surviving conversation, got %v", err)
	}
	if again.ID != conv.ID {
		t.Error("conversation changed after group delete")
	}

	// But a group that never had one cannot get one now.
	convs := conversationstore.New(fx.DB())
	if _, err := convs.GetByGroup(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown group, got %v", err)
	}
}
