package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/crewhub-app/crewhub/internal/app/system/auth"
	"github.com/crewhub-app/crewhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestActorCtx_ValidUser(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/groups", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: id.Hex(), Name: "Ada Lovelace"})

	name, actorID, ok := authz.ActorCtx(req)
	if !ok {
		t.Fatal("expected ok=true for authenticated user")
	}
	if actorID != id {
		t.Errorf("actor id: got %s, want %s", actorID.Hex(), id.Hex())
	}
	if name != "Ada Lovelace" {
		t.Errorf("name: got %q", name)
	}
}

func TestActorCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/groups", nil)

	_, actorID, ok := authz.ActorCtx(req)
	if ok {
		t.Error("expected ok=false when no user in context")
	}
	if !actorID.IsZero() {
		t.Errorf("expected NilObjectID, got %s", actorID.Hex())
	}
}

func TestActorCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/groups", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-object-id", Name: "Broken"})

	_, _, ok := authz.ActorCtx(req)
	if ok {
		t.Error("expected ok=false for malformed session id")
	}
}
