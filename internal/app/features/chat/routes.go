// internal/app/features/chat/routes.go
package chat

import (
	"github.com/crewhub-app/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes registers the conversation and message endpoints on the
// shared group subrouter. Chat shares the /groups mount with the
// governance feature, so it adds routes rather than owning a mount.
func Routes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/{id}/conversation", h.HandleEnsureConversation)
		pr.Post("/{id}/messages", h.HandlePostMessage)
		pr.Get("/{id}/messages", h.ServeMessages)
	})
}
