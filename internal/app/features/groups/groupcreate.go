// internal/app/features/groups/groupcreate.go
package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"github.com/crewhub-app/crewhub/internal/app/system/htmlsanitize"
	"github.com/crewhub-app/crewhub/internal/app/system/timeouts"
	"github.com/crewhub-app/crewhub/internal/domain/models"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// HandleCreateGroup handles POST /groups. The creator becomes owner and
// sole member.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteBadRequest(w, "invalid JSON body")
		return
	}

	name := htmlsanitize.StripTags(req.Name)
	if name == "" {
		apierrors.WriteBadRequest(w, "group name is required")
		return
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		apierrors.WriteBadRequest(w, "visibility must be public or private")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := groupstore.New(h.DB).Create(ctx, models.Group{
		Name:        name,
		Description: htmlsanitize.StripTags(req.Description),
		Visibility:  visibility,
		OwnerID:     actor,
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			apierrors.WriteDomain(w, h.Log, err)
			return
		}
		apierrors.WriteDomain(w, h.Log, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err))
		return
	}

	writeJSON(w, http.StatusCreated, governance.NewView(g, membership.Outcome{Result: "created"}))
}
