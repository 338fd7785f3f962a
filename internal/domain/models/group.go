// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls how a non-member becomes a member.
// Public groups admit join requests immediately; private groups queue
// them for the owner's decision.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Group is the root aggregate for community-group governance. All
// membership state (owner, moderators, members, pending join requests,
// pending invites) lives on the one document so that a single versioned
// replace applies a transition atomically.
//
// Invariants (enforced by the membership engine, rechecked in its tests):
//   - OwnerID is always listed in MemberIDs and never in ModeratorIDs.
//   - Every id in ModeratorIDs is also in MemberIDs.
//   - JoinRequestIDs and MemberIDs are disjoint.
//   - At most one pending invite per invitee.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`
	Visibility  string             `bson:"visibility" json:"visibility"`

	OwnerID        primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	ModeratorIDs   []primitive.ObjectID `bson:"moderator_ids" json:"moderator_ids"`
	MemberIDs      []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	JoinRequestIDs []primitive.ObjectID `bson:"join_request_ids" json:"join_request_ids"`
	Invites        []Invite             `bson:"invites" json:"invites"`

	// Version is incremented on every successful replace. Writers must
	// match the version they read (see groupstore.ReplaceVersioned).
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Invite is a pending offer of membership. ToID identifies the invitee;
// FromID records who extended the offer (owner or moderator).
type Invite struct {
	ToID      primitive.ObjectID `bson:"to_id" json:"to_id"`
	FromID    primitive.ObjectID `bson:"from_id" json:"from_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// IsMember reports whether userID is in MemberIDs.
func (g *Group) IsMember(userID primitive.ObjectID) bool {
	return containsID(g.MemberIDs, userID)
}

// IsModerator reports whether userID is in ModeratorIDs.
func (g *Group) IsModerator(userID primitive.ObjectID) bool {
	return containsID(g.ModeratorIDs, userID)
}

// HasJoinRequest reports whether userID has a pending join request.
func (g *Group) HasJoinRequest(userID primitive.ObjectID) bool {
	return containsID(g.JoinRequestIDs, userID)
}

// HasInvite reports whether userID has a pending invite, regardless of
// who sent it.
func (g *Group) HasInvite(userID primitive.ObjectID) bool {
	for _, inv := range g.Invites {
		if inv.ToID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so the membership engine can build the next
// state without mutating the loaded document.
func (g *Group) Clone() Group {
	out := *g
	out.ModeratorIDs = append([]primitive.ObjectID(nil), g.ModeratorIDs...)
	out.MemberIDs = append([]primitive.ObjectID(nil), g.MemberIDs...)
	out.JoinRequestIDs = append([]primitive.ObjectID(nil), g.JoinRequestIDs...)
	out.Invites = append([]Invite(nil), g.Invites...)
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
