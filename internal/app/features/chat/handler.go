// internal/app/features/chat/handler.go
package chat

import (
	"encoding/json"
	"net/http"

	"github.com/crewhub-app/crewhub/internal/app/chatbridge"
	"go.uber.org/zap"
)

// Handler serves the conversation endpoints of a group. All persistence
// goes through the chat bridge, which enforces the member snapshot.
type Handler struct {
	Bridge *chatbridge.Bridge
	Log    *zap.Logger
}

// NewHandler constructs a chat Handler.
func NewHandler(bridge *chatbridge.Bridge, logger *zap.Logger) *Handler {
	return &Handler{
		Bridge: bridge,
		Log:    logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
