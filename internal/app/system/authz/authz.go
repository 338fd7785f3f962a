// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/crewhub-app/crewhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorCtx returns the acting user's name, Mongo ObjectID, and a found
// flag. If no user is present in context or the user ID is malformed, it
// returns "", NilObjectID, false, so callers can trust that ok=true
// means an authenticated user with a valid ObjectID. Group roles are not
// resolved here; they are computed per group from the aggregate.
func ActorCtx(r *http.Request) (name string, actorID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	actorID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in session, fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, actorID, true
}
