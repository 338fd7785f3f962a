// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"fmt"
	"net/http"

	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"github.com/crewhub-app/crewhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleDeleteGroup handles DELETE /groups/{id}. Only the owner may
// delete a group. The conversation and its messages are retained as
// history.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteBadRequest(w, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := groupstore.New(h.DB)
	group, err := store.GetByID(ctx, groupID)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	if group.OwnerID != actor {
		apierrors.WriteDomain(w, h.Log,
			fmt.Errorf("%w: only the owner may delete the group", membership.ErrUnauthorized))
		return
	}

	if _, err := store.Delete(ctx, groupID); err != nil {
		apierrors.WriteDomain(w, h.Log, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
