// internal/app/governance/view.go
package governance

import (
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	"github.com/crewhub-app/crewhub/internal/domain/models"
)

// View is the response shape for governance calls: the group plus a
// role-annotated member list and the outcome of the transition.
type View struct {
	Group   models.Group `json:"group"`
	Members []MemberView `json:"members"`
	Outcome OutcomeView  `json:"outcome"`
}

// MemberView pairs a member id with their computed role.
type MemberView struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// OutcomeView reports what the transition did. NewOwnerID is set only
// on ownership transfer.
type OutcomeView struct {
	Result     string `json:"result"`
	NewOwnerID string `json:"new_owner_id,omitempty"`
}

// NewView builds a View from a persisted group and an engine outcome.
func NewView(g models.Group, out membership.Outcome) View {
	members := make([]MemberView, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		members = append(members, MemberView{
			UserID: id.Hex(),
			Role:   string(membership.RoleOf(&g, id)),
		})
	}
	v := View{
		Group:   g,
		Members: members,
		Outcome: OutcomeView{Result: string(out.Result)},
	}
	if !out.NewOwnerID.IsZero() {
		v.Outcome.NewOwnerID = out.NewOwnerID.Hex()
	}
	return v
}
