// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"github.com/crewhub-app/crewhub/internal/app/system/timeouts"
	"github.com/crewhub-app/crewhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeGroupView handles GET /groups/{id}, returning the group with its
// members annotated by role.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteBadRequest(w, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.Gov.Get(ctx, groupID)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type groupListResponse struct {
	Groups []models.Group `json:"groups"`
	Next   string         `json:"next,omitempty"`
}

// ServeGroupsList handles GET /groups, listing groups the actor belongs
// to, paged by id via ?after= and ?limit=.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}

	after := primitive.NilObjectID
	if v := r.URL.Query().Get("after"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.WriteBadRequest(w, "invalid after cursor")
			return
		}
		after = id
	}
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 200 {
			apierrors.WriteBadRequest(w, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := groupstore.New(h.DB).ListByMember(ctx, actor, after, limit)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, fmt.Errorf("%w: %v", governance.ErrStoreUnavailable, err))
		return
	}

	resp := groupListResponse{Groups: list}
	if int64(len(list)) == limit {
		resp.Next = list[len(list)-1].ID.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}
