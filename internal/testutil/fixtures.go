package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and login id.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, loginID string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		LoginID:    loginID,
		LoginIDCI:  text.Fold(loginID),
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateGroup creates a test group owned by the given user. The owner is
// the sole member, matching what the group store writes on create.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, owner primitive.ObjectID, visibility string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Description:    "Test group description",
		Visibility:     visibility,
		OwnerID:        owner,
		ModeratorIDs:   []primitive.ObjectID{},
		MemberIDs:      []primitive.ObjectID{owner},
		JoinRequestIDs: []primitive.ObjectID{},
		Invites:        []models.Invite{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("groups").InsertOne(ctx, group)
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	return group
}

// CreateGroupWithMembers creates a group with extra members, the first
// batch of which can also be promoted to moderators by the caller.
func (f *Fixtures) CreateGroupWithMembers(ctx context.Context, name string, owner primitive.ObjectID, visibility string, members ...primitive.ObjectID) models.Group {
	f.t.Helper()

	group := f.CreateGroup(ctx, name, owner, visibility)
	group.MemberIDs = append(group.MemberIDs, members...)

	_, err := f.db.Collection("groups").ReplaceOne(ctx, bson.M{"_id": group.ID}, group)
	if err != nil {
		f.t.Fatalf("failed to add members to test group: %v", err)
	}

	return group
}
