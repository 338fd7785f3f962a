// internal/app/features/groups/routes.go
package groups

import (
	"github.com/crewhub-app/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIFECYCLE
		pr.Post("/", h.HandleCreateGroup)
		pr.Get("/", h.ServeGroupsList)
		pr.Get("/{id}", h.ServeGroupView)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// JOIN REQUESTS
		pr.Post("/{id}/join", h.HandleRequestJoin)
		pr.Post("/{id}/approve", h.HandleApproveJoin)
		pr.Post("/{id}/decline", h.HandleDeclineJoin)

		// INVITES
		pr.Post("/{id}/invites", h.HandleInvite)
		pr.Post("/{id}/invites/respond", h.HandleRespondInvite)

		// ROLES & MEMBERSHIP
		pr.Post("/{id}/moderators", h.HandleAddModerator)
		pr.Delete("/{id}/moderators/{userID}", h.HandleRemoveModerator)
		pr.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	})

	return r
}
