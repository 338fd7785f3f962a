// internal/app/features/errors/errors.go
//
// Package errors translates domain errors into JSON API responses. The
// mapping is fixed: unknown group → 404, a rule the actor is not allowed
// to perform → 403, a rule the state does not allow → 400, store
// trouble → 503. Anything unrecognized is a 500 and gets logged.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewhub-app/crewhub/internal/app/chatbridge"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Response is the JSON error body.
type Response struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Write sends a JSON error with the given status, machine-readable code,
// and human-readable detail.
func Write(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: code, Detail: detail})
}

// WriteDomain maps a domain error onto the API's status taxonomy and
// writes it. It never leaks internal error text for 5xx responses.
func WriteDomain(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, governance.ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments):
		Write(w, http.StatusNotFound, "not_found", "group not found")

	case errors.Is(err, membership.ErrUnauthorized):
		Write(w, http.StatusForbidden, "unauthorized", err.Error())

	case errors.Is(err, chatbridge.ErrNotConversationMember):
		Write(w, http.StatusForbidden, "unauthorized", err.Error())

	case errors.Is(err, membership.ErrInvalidOperation):
		Write(w, http.StatusBadRequest, "invalid_operation", err.Error())

	case errors.Is(err, chatbridge.ErrEmptyMessage):
		Write(w, http.StatusBadRequest, "invalid_operation", err.Error())

	case errors.Is(err, groupstore.ErrDuplicateGroupName):
		Write(w, http.StatusBadRequest, "invalid_operation", "a group with this name already exists")

	case errors.Is(err, governance.ErrStoreUnavailable):
		log.Error("store unavailable", zap.Error(err))
		Write(w, http.StatusServiceUnavailable, "store_unavailable", "try again shortly")

	default:
		log.Error("unhandled error", zap.Error(err))
		Write(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// WriteBadRequest reports a malformed request (bad id, unparsable body).
func WriteBadRequest(w http.ResponseWriter, detail string) {
	Write(w, http.StatusBadRequest, "bad_request", detail)
}

// WriteUnauthenticated reports a missing or unusable identity.
func WriteUnauthenticated(w http.ResponseWriter) {
	Write(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
}
