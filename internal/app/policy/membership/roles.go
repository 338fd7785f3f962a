// internal/app/policy/membership/roles.go
package membership

import (
	"fmt"
	"strings"

	"github.com/crewhub-app/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's standing in one group, computed on demand from the
// aggregate's four underlying sets. It is never stored.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
	RoleRequester Role = "requester"
	RoleInvitee   Role = "invitee"
	RoleNone      Role = "none"
)

// RoleOf returns the highest-ranking role userID holds in g.
func RoleOf(g *models.Group, userID primitive.ObjectID) Role {
	switch {
	case userID == g.OwnerID:
		return RoleOwner
	case g.IsModerator(userID):
		return RoleModerator
	case g.IsMember(userID):
		return RoleMember
	case g.HasJoinRequest(userID):
		return RoleRequester
	case g.HasInvite(userID):
		return RoleInvitee
	default:
		return RoleNone
	}
}

// Check verifies the aggregate invariants. The engine preserves them on
// every transition; tests recheck them as a postcondition, and the
// governance service refuses to persist a state that fails here.
func Check(g *models.Group) error {
	var problems []string

	if !g.IsMember(g.OwnerID) {
		problems = append(problems, "owner is not listed as a member")
	}
	if g.IsModerator(g.OwnerID) {
		problems = append(problems, "owner is listed as a moderator")
	}
	for _, id := range g.ModeratorIDs {
		if !g.IsMember(id) {
			problems = append(problems, fmt.Sprintf("moderator %s is not a member", id.Hex()))
		}
	}
	for _, id := range g.JoinRequestIDs {
		if g.IsMember(id) {
			problems = append(problems, fmt.Sprintf("member %s has a pending join request", id.Hex()))
		}
	}
	seen := make(map[primitive.ObjectID]struct{}, len(g.Invites))
	for _, inv := range g.Invites {
		if _, dup := seen[inv.ToID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate invite for %s", inv.ToID.Hex()))
		}
		seen[inv.ToID] = struct{}{}
	}

	if len(problems) > 0 {
		return fmt.Errorf("group %s: %s", g.ID.Hex(), strings.Join(problems, "; "))
	}
	return nil
}
