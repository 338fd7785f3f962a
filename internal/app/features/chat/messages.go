// internal/app/features/chat/messages.go
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"github.com/crewhub-app/crewhub/internal/app/system/htmlsanitize"
	"github.com/crewhub-app/crewhub/internal/app/system/timeouts"
	"github.com/crewhub-app/crewhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postMessageRequest struct {
	Body string `json:"body"`
}

type messageListResponse struct {
	ConversationID string                `json:"conversation_id"`
	Messages       []models.GroupMessage `json:"messages"`
}

// HandleEnsureConversation handles POST /groups/{id}/conversation. The
// first call snapshots the group's membership; later calls return the
// same conversation unchanged.
func (h *Handler) HandleEnsureConversation(w http.ResponseWriter, r *http.Request) {
	_, _, ok := authz.ActorCtx(r)
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

	conv, err := h.Bridge.EnsureConversation(ctx, groupID)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// HandlePostMessage handles POST /groups/{id}/messages with body
// {"body": "..."}. Only members of the conversation snapshot may post.
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
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
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteBadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msg, err := h.Bridge.PostMessage(ctx, groupID, actor, htmlsanitize.Sanitize(req.Body))
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ServeMessages handles GET /groups/{id}/messages?limit=, newest first.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
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

	msgs, err := h.Bridge.ListMessages(ctx, groupID, actor, limit)
	if err != nil {
		apierrors.WriteDomain(w, h.Log, err)
		return
	}
	resp := messageListResponse{Messages: msgs}
	if len(msgs) > 0 {
		resp.ConversationID = msgs[0].ConversationID
	}
	writeJSON(w, http.StatusOK, resp)
}
