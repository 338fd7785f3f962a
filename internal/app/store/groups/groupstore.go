// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists")

	// ErrVersionConflict means the document changed between the read and
	// the versioned replace. Callers reload and retry the transition.
	ErrVersionConflict = errors.New("group was modified concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts a new group with the owner as its sole member. The
// caller supplies name, description, visibility, and owner; everything
// else is initialized here.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	if g.Visibility == "" {
		g.Visibility = models.VisibilityPublic
	}
	g.MemberIDs = []primitive.ObjectID{g.OwnerID}
	g.ModeratorIDs = []primitive.ObjectID{}
	g.JoinRequestIDs = []primitive.ObjectID{}
	g.Invites = []models.Invite{}
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// ReplaceVersioned persists g only if the stored document still carries
// the version g was loaded with, bumping the version in the same write.
// This is the serialization point for all governance transitions: the
// filter and replace are one atomic document operation, so two writers
// racing on the same version cannot both succeed.
func (s *Store) ReplaceVersioned(ctx context.Context, g models.Group) (models.Group, error) {
	readVersion := g.Version
	g.Version = readVersion + 1
	g.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": readVersion}, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	if res.MatchedCount == 0 {
		return models.Group{}, ErrVersionConflict
	}
	return g, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByMember returns groups the user belongs to, in id order, starting
// after the given id (zero means from the beginning).
func (s *Store) ListByMember(ctx context.Context, userID primitive.ObjectID, after primitive.ObjectID, limit int64) ([]models.Group, error) {
	filter := bson.M{"member_ids": userID}
	if !after.IsZero() {
		filter["_id"] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
