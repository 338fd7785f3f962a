// internal/app/features/groups/membershipactions.go
//
// One HTTP handler per governance operation. Each parses the actor from
// the session, builds the corresponding engine operation, and hands it
// to the governance service, which serializes it against other writers
// of the same group.
package groups

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"github.com/crewhub-app/crewhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userIDRequest struct {
	UserID string `json:"user_id"`
}

type respondInviteRequest struct {
	Accept bool `json:"accept"`
}

// execute runs one governance operation against the group in the URL
// and writes the resulting view.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, op membership.Operation) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteBadRequest(w, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	view, err := h.Gov.Execute(ctx, groupID, op)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeUserID reads a {"user_id": "..."} body.
func decodeUserID(r *http.Request) (primitive.ObjectID, bool) {
	var req userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleRequestJoin handles POST /groups/{id}/join. Public groups admit
// the actor immediately; private groups queue a join request.
func (h *Handler) HandleRequestJoin(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	h.execute(w, r, membership.RequestJoin{Actor: actor})
}

// HandleApproveJoin handles POST /groups/{id}/approve with body
// {"user_id": ...} naming the requester to admit.
func (h *Handler) HandleApproveJoin(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	requester, ok := decodeUserID(r)
	if !ok {
		apierrors.WriteBadRequest(w, "user_id is required")
		return
	}
	h.execute(w, r, membership.ApproveJoin{Actor: actor, Requester: requester})
}

// HandleDeclineJoin handles POST /groups/{id}/decline with body
// {"user_id": ...}.
func (h *Handler) HandleDeclineJoin(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	requester, ok := decodeUserID(r)
	if !ok {
		apierrors.WriteBadRequest(w, "user_id is required")
		return
	}
	h.execute(w, r, membership.DeclineJoin{Actor: actor, Requester: requester})
}

// HandleInvite handles POST /groups/{id}/invites with body
// {"user_id": ...} naming the invitee.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	target, ok := decodeUserID(r)
	if !ok {
		apierrors.WriteBadRequest(w, "user_id is required")
		return
	}
	h.execute(w, r, membership.Invite{Actor: actor, Target: target})
}

// HandleRespondInvite handles POST /groups/{id}/invites/respond with
// body {"accept": true|false}. Accepting joins immediately, bypassing
// the private-group queue.
func (h *Handler) HandleRespondInvite(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	var req respondInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteBadRequest(w, "invalid JSON body")
		return
	}
	h.execute(w, r, membership.RespondInvite{Actor: actor, Accept: req.Accept})
}

// HandleAddModerator handles POST /groups/{id}/moderators with body
// {"user_id": ...}. Owner only; the target must already be a member.
func (h *Handler) HandleAddModerator(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	target, ok := decodeUserID(r)
	if !ok {
		apierrors.WriteBadRequest(w, "user_id is required")
		return
	}
	h.execute(w, r, membership.AddModerator{Actor: actor, Target: target})
}

// HandleRemoveModerator handles DELETE /groups/{id}/moderators/{userID}.
// Owner only. Demotes to plain member; no-op if not a moderator.
func (h *Handler) HandleRemoveModerator(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.WriteBadRequest(w, "invalid user id")
		return
	}
	h.execute(w, r, membership.RemoveModerator{Actor: actor, Target: target})
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{userID}.
// A member may remove themself (leave); the owner may remove anyone.
// When the owner leaves, ?new_owner_id= selects the successor from the
// group's moderators; without it the first moderator succeeds.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.ActorCtx(r)
	if !ok {
		apierrors.WriteUnauthenticated(w)
		return
	}
	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.WriteBadRequest(w, "invalid user id")
		return
	}

	op := membership.RemoveMember{Actor: actor, Target: target}
	if v := r.URL.Query().Get("new_owner_id"); v != "" {
		successor, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.WriteBadRequest(w, "invalid new_owner_id")
			return
		}
		op.NewOwner = &successor
	}
	h.execute(w, r, op)
}
