// internal/app/policy/membership/membership.go

// Package membership is the pure decision core for group governance.
// Every operation takes the current Group state and computes the next
// valid state or rejects the request; nothing here touches storage.
// The governance service is responsible for loading the group, calling
// Apply on a working copy, and persisting the result atomically.
//
// Authorization rules:
//   - Join-request approval and decline are owner-only.
//   - Inviting is open to the owner and moderators.
//   - Moderator promotion/demotion is owner-only.
//   - Removal is self-service (leaving) or owner-initiated (kick).
//
// Operations validate fully before mutating, so a rejected operation
// leaves the group untouched.
package membership

import (
	"errors"
	"fmt"
	"time"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUnauthorized means the actor lacks the role the operation
	// requires. It is never downgraded; callers surface it as 403.
	ErrUnauthorized = errors.New("actor is not authorized for this operation")

	// ErrInvalidOperation means a structurally valid request violates a
	// governance rule. The wrapping error carries the specific rule.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Result identifies what a successful transition did.
type Result string

const (
	ResultJoined               Result = "joined"
	ResultRequestPending       Result = "request_pending"
	ResultUnchanged            Result = "unchanged"
	ResultApproved             Result = "approved"
	ResultDeclined             Result = "declined"
	ResultInvited              Result = "invited"
	ResultInviteAccepted       Result = "invite_accepted"
	ResultInviteDeclined       Result = "invite_declined"
	ResultModeratorAdded       Result = "moderator_added"
	ResultModeratorRemoved     Result = "moderator_removed"
	ResultMemberRemoved        Result = "member_removed"
	ResultOwnershipTransferred Result = "ownership_transferred"
)

// Outcome is returned by every operation. NewOwnerID is set only when
// the operation transferred ownership.
type Outcome struct {
	Result     Result
	NewOwnerID primitive.ObjectID
}

// Operation is one governance transition. Apply mutates g in place
// only on success; on error g is unchanged.
type Operation interface {
	Apply(g *models.Group) (Outcome, error)
	Name() string
}

// RequestJoin is a user asking to join the group. Members are a no-op;
// public groups admit immediately; private groups queue the request.
type RequestJoin struct {
	Actor primitive.ObjectID
}

func (op RequestJoin) Name() string { return "request_join" }

func (op RequestJoin) Apply(g *models.Group) (Outcome, error) {
	if g.IsMember(op.Actor) {
		return Outcome{Result: ResultUnchanged}, nil
	}
	if g.Visibility == models.VisibilityPublic {
		g.MemberIDs = append(g.MemberIDs, op.Actor)
		// Clear any stale request left over from a visibility change.
		g.JoinRequestIDs = removeID(g.JoinRequestIDs, op.Actor)
		return Outcome{Result: ResultJoined}, nil
	}
	if !g.HasJoinRequest(op.Actor) {
		g.JoinRequestIDs = append(g.JoinRequestIDs, op.Actor)
	}
	return Outcome{Result: ResultRequestPending}, nil
}

// ApproveJoin grants a pending join request. Owner-only. Approving a
// requester who is no longer pending, or already a member, still
// succeeds: the removal and the add are each safe no-ops.
type ApproveJoin struct {
	Actor     primitive.ObjectID
	Requester primitive.ObjectID
}

func (op ApproveJoin) Name() string { return "approve_join" }

func (op ApproveJoin) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: only the owner can approve join requests", ErrUnauthorized)
	}
	g.JoinRequestIDs = removeID(g.JoinRequestIDs, op.Requester)
	if !g.IsMember(op.Requester) {
		g.MemberIDs = append(g.MemberIDs, op.Requester)
	}
	return Outcome{Result: ResultApproved}, nil
}

// DeclineJoin drops a pending join request without any other change.
// Owner-only.
type DeclineJoin struct {
	Actor     primitive.ObjectID
	Requester primitive.ObjectID
}

func (op DeclineJoin) Name() string { return "decline_join" }

func (op DeclineJoin) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: only the owner can decline join requests", ErrUnauthorized)
	}
	g.JoinRequestIDs = removeID(g.JoinRequestIDs, op.Requester)
	return Outcome{Result: ResultDeclined}, nil
}

// Invite offers membership to a user. Owner or moderator only. A second
// invite to an already-invited user is silently ignored no matter who
// sends it, keeping at most one pending invite per invitee.
type Invite struct {
	Actor  primitive.ObjectID
	Target primitive.ObjectID
	At     time.Time // zero means now
}

func (op Invite) Name() string { return "invite" }

func (op Invite) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != g.OwnerID && !g.IsModerator(op.Actor) {
		return Outcome{}, fmt.Errorf("%w: only the owner or a moderator can invite", ErrUnauthorized)
	}
	if g.HasInvite(op.Target) {
		return Outcome{Result: ResultUnchanged}, nil
	}
	at := op.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	g.Invites = append(g.Invites, models.Invite{ToID: op.Target, FromID: op.Actor, CreatedAt: at})
	return Outcome{Result: ResultInvited}, nil
}

// RespondInvite resolves the actor's pending invite. Accepting grants
// membership regardless of visibility and without any join-request
// step. The actor id must already be bound to an authenticated session
// by the calling context; the engine takes it as given.
type RespondInvite struct {
	Actor  primitive.ObjectID
	Accept bool
}

func (op RespondInvite) Name() string { return "respond_invite" }

func (op RespondInvite) Apply(g *models.Group) (Outcome, error) {
	if !g.HasInvite(op.Actor) {
		return Outcome{}, fmt.Errorf("%w: no pending invite for this user", ErrInvalidOperation)
	}
	kept := g.Invites[:0:0]
	for _, inv := range g.Invites {
		if inv.ToID != op.Actor {
			kept = append(kept, inv)
		}
	}
	g.Invites = kept
	if !op.Accept {
		return Outcome{Result: ResultInviteDeclined}, nil
	}
	if !g.IsMember(op.Actor) {
		g.MemberIDs = append(g.MemberIDs, op.Actor)
	}
	// A join request and membership cannot coexist.
	g.JoinRequestIDs = removeID(g.JoinRequestIDs, op.Actor)
	return Outcome{Result: ResultInviteAccepted}, nil
}

// AddModerator promotes a member. Owner-only, idempotent. The owner
// cannot hold the moderator role on top of ownership.
type AddModerator struct {
	Actor  primitive.ObjectID
	Target primitive.ObjectID
}

func (op AddModerator) Name() string { return "add_moderator" }

func (op AddModerator) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: only the owner can add moderators", ErrUnauthorized)
	}
	if op.Target == g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: the owner cannot also be a moderator", ErrInvalidOperation)
	}
	if !g.IsMember(op.Target) {
		return Outcome{}, fmt.Errorf("%w: must be a member first", ErrInvalidOperation)
	}
	if g.IsModerator(op.Target) {
		return Outcome{Result: ResultUnchanged}, nil
	}
	g.ModeratorIDs = append(g.ModeratorIDs, op.Target)
	return Outcome{Result: ResultModeratorAdded}, nil
}

// RemoveModerator demotes unconditionally. Owner-only. Demoting someone
// who already left the group is a harmless no-op.
type RemoveModerator struct {
	Actor  primitive.ObjectID
	Target primitive.ObjectID
}

func (op RemoveModerator) Name() string { return "remove_moderator" }

func (op RemoveModerator) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: only the owner can remove moderators", ErrUnauthorized)
	}
	g.ModeratorIDs = removeID(g.ModeratorIDs, op.Target)
	return Outcome{Result: ResultModeratorRemoved}, nil
}

// RemoveMember covers both leaving (actor == target) and an owner
// removing someone else. When the departing member is the owner,
// ownership must transfer to a moderator: either the explicitly named
// successor or, absent one, the first moderator in stored order.
type RemoveMember struct {
	Actor    primitive.ObjectID
	Target   primitive.ObjectID
	NewOwner *primitive.ObjectID // optional explicit successor
}

func (op RemoveMember) Name() string { return "remove_member" }

func (op RemoveMember) Apply(g *models.Group) (Outcome, error) {
	if op.Actor != op.Target && op.Actor != g.OwnerID {
		return Outcome{}, fmt.Errorf("%w: only the owner can remove other members", ErrUnauthorized)
	}

	if op.Target != g.OwnerID {
		g.MemberIDs = removeID(g.MemberIDs, op.Target)
		g.ModeratorIDs = removeID(g.ModeratorIDs, op.Target)
		return Outcome{Result: ResultMemberRemoved}, nil
	}

	// The owner is leaving: pick a successor among moderators who are
	// still members, in stored moderator-list order.
	var successors []primitive.ObjectID
	for _, id := range g.ModeratorIDs {
		if id != g.OwnerID && g.IsMember(id) {
			successors = append(successors, id)
		}
	}
	if len(successors) == 0 {
		return Outcome{}, fmt.Errorf("%w: owner cannot leave: add a moderator first to transfer ownership", ErrInvalidOperation)
	}

	successor := successors[0]
	if op.NewOwner != nil {
		if !containsID(successors, *op.NewOwner) {
			return Outcome{}, fmt.Errorf("%w: selected new owner is not a valid moderator", ErrInvalidOperation)
		}
		successor = *op.NewOwner
	}

	departing := g.OwnerID
	g.OwnerID = successor
	g.ModeratorIDs = removeID(g.ModeratorIDs, successor)
	g.MemberIDs = removeID(g.MemberIDs, departing)
	g.ModeratorIDs = removeID(g.ModeratorIDs, departing)
	return Outcome{Result: ResultOwnershipTransferred, NewOwnerID: successor}, nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
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
