package groups_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/crewhub-app/crewhub/internal/app/features/groups"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"github.com/crewhub-app/crewhub/internal/domain/models"
	"github.com/crewhub-app/crewhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureGroupIndexes(t, db)
	gov := governance.New(groupstore.New(db), zap.NewNop())
	return groups.NewHandler(db, gov, zap.NewNop()), testutil.NewFixtures(t, db)
}

func decodeView(t *testing.T, rec *testutil.ResponseRecorder) governance.View {
	t.Helper()
	var view governance.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("response is not a group view: %v\nbody: %s", err, rec.Body.String())
	}
	return view
}

func TestHandleCreateGroup(t *testing.T) {
	h, _ := newHandler(t)

	creator := testutil.NewTestUser("Grace Hopper", "grace@test.com")
	body := strings.NewReader(`{"name":"Compiler Club","description":"We like parsers","visibility":"private"}`)
	req := testutil.NewJSONRequest(http.MethodPost, "/groups", body, creator)
	rec := testutil.NewRecorder()

	h.HandleCreateGroup(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	view := decodeView(t, rec)
	if view.Group.Name != "Compiler Club" {
		t.Errorf("name: got %q", view.Group.Name)
	}
	if view.Group.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility: got %q", view.Group.Visibility)
	}
	if view.Group.OwnerID.Hex() != creator.ID {
		t.Errorf("owner: got %s, want %s", view.Group.OwnerID.Hex(), creator.ID)
	}
	if len(view.Members) != 1 || view.Members[0].Role != "owner" {
		t.Errorf("members: got %+v", view.Members)
	}
}

func TestHandleCreateGroup_StripsMarkup(t *testing.T) {
	h, _ := newHandler(t)

	creator := testutil.NewTestUser("Grace Hopper", "grace@test.com")
	body := strings.NewReader(`{"name":"<b>Chess</b> Club","description":"<script>alert(1)</script>Friendly"}`)
	req := testutil.NewJSONRequest(http.MethodPost, "/groups", body, creator)
	rec := testutil.NewRecorder()

	h.HandleCreateGroup(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	view := decodeView(t, rec)
	if view.Group.Name != "Chess Club" {
		t.Errorf("name not stripped: %q", view.Group.Name)
	}
	if view.Group.Description != "Friendly" {
		t.Errorf("description not stripped: %q", view.Group.Description)
	}
}

func TestHandleCreateGroup_DuplicateName(t *testing.T) {
	h, _ := newHandler(t)

	creator := testutil.NewTestUser("Grace Hopper", "grace@test.com")
	first := testutil.NewJSONRequest(http.MethodPost, "/groups",
		strings.NewReader(`{"name":"Chess Club"}`), creator)
	rec := testutil.NewRecorder()
	h.HandleCreateGroup(rec.ResponseRecorder, first)
	rec.AssertStatus(t, http.StatusCreated)

	// Same name, different casing, different user.
	second := testutil.NewJSONRequest(http.MethodPost, "/groups",
		strings.NewReader(`{"name":"CHESS club"}`), testutil.NewTestUser("Alan Turing", "alan@test.com"))
	rec = testutil.NewRecorder()
	h.HandleCreateGroup(rec.ResponseRecorder, second)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleCreateGroup_MissingName(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/groups",
		strings.NewReader(`{"description":"no name"}`), testutil.NewTestUser("Grace Hopper", "grace@test.com"))
	rec := testutil.NewRecorder()
	h.HandleCreateGroup(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeGroupView_NotFound(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/x",
		testutil.NewTestUser("Grace Hopper", "grace@test.com"))
	req = testutil.WithChiURLParam(req, "id", primitive.NewObjectID().Hex())
	rec := testutil.NewRecorder()

	h.ServeGroupView(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleRequestJoin_PublicGroup(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Chess Club", owner, models.VisibilityPublic)

	joiner := testutil.NewTestUser("Alan Turing", "alan@test.com")
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/x/join", joiner)
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleRequestJoin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	view := decodeView(t, rec)
	if view.Outcome.Result != "joined" {
		t.Errorf("outcome: got %q, want joined", view.Outcome.Result)
	}
	if len(view.Members) != 2 {
		t.Errorf("members: got %d, want 2", len(view.Members))
	}
}

func TestHandleRequestJoin_PrivateGroupQueues(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Secret Society", owner, models.VisibilityPrivate)

	joiner := testutil.NewTestUser("Alan Turing", "alan@test.com")
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/x/join", joiner)
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleRequestJoin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	view := decodeView(t, rec)
	if view.Outcome.Result != "request_pending" {
		t.Errorf("outcome: got %q, want request_pending", view.Outcome.Result)
	}
	if len(view.Group.JoinRequestIDs) != 1 {
		t.Errorf("join requests: got %d, want 1", len(view.Group.JoinRequestIDs))
	}
}

func TestHandleApproveJoin_OnlyOwner(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Secret Society", owner, models.VisibilityPrivate)
	group.JoinRequestIDs = []primitive.ObjectID{requester}
	if _, err := groupstore.New(fx.DB()).ReplaceVersioned(ctx, group); err != nil {
		t.Fatalf("seed join request: %v", err)
	}

	// A random member cannot approve.
	outsider := testutil.NewTestUser("Mallory", "mallory@test.com")
	req := testutil.NewJSONRequest(http.MethodPost, "/groups/x/approve",
		strings.NewReader(`{"user_id":"`+requester.Hex()+`"}`), outsider)
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleApproveJoin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The owner can.
	req = testutil.NewJSONRequest(http.MethodPost, "/groups/x/approve",
		strings.NewReader(`{"user_id":"`+requester.Hex()+`"}`), testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleApproveJoin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	view := decodeView(t, rec)
	if view.Outcome.Result != "approved" {
		t.Errorf("outcome: got %q, want approved", view.Outcome.Result)
	}
}

func TestHandleInvite_And_Respond(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Secret Society", owner, models.VisibilityPrivate)

	invitee := primitive.NewObjectID()
	req := testutil.NewJSONRequest(http.MethodPost, "/groups/x/invites",
		strings.NewReader(`{"user_id":"`+invitee.Hex()+`"}`), testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleInvite(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	// The invitee accepts and joins the private group directly.
	req = testutil.NewJSONRequest(http.MethodPost, "/groups/x/invites/respond",
		strings.NewReader(`{"accept":true}`), testutil.UserWithID(invitee, "Invitee"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleRespondInvite(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	view := decodeView(t, rec)
	if view.Outcome.Result != "invite_accepted" {
		t.Errorf("outcome: got %q, want invite_accepted", view.Outcome.Result)
	}
	if len(view.Group.MemberIDs) != 2 {
		t.Errorf("members: got %d, want 2", len(view.Group.MemberIDs))
	}
}

func TestHandleRespondInvite_NoPendingInvite(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Secret Society", owner, models.VisibilityPrivate)

	req := testutil.NewJSONRequest(http.MethodPost, "/groups/x/invites/respond",
		strings.NewReader(`{"accept":true}`), testutil.NewTestUser("Mallory", "mallory@test.com"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRespondInvite(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleAddModerator_NonMemberRejected(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Chess Club", owner, models.VisibilityPublic)

	outsider := primitive.NewObjectID()
	req := testutil.NewJSONRequest(http.MethodPost, "/groups/x/moderators",
		strings.NewReader(`{"user_id":"`+outsider.Hex()+`"}`), testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleAddModerator(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "member")
}

func TestHandleRemoveMember_OwnerLeavesWithSuccessor(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	mod := primitive.NewObjectID()
	group := fx.CreateGroupWithMembers(ctx, "Chess Club", owner, models.VisibilityPublic, mod)
	g, err := groupstore.New(fx.DB()).GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	g.ModeratorIDs = []primitive.ObjectID{mod}
	if _, err := groupstore.New(fx.DB()).ReplaceVersioned(ctx, g); err != nil {
		t.Fatalf("seed moderator: %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodDelete,
		"/groups/x/members/y?new_owner_id="+mod.Hex(), testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", owner.Hex())
	rec := testutil.NewRecorder()

	h.HandleRemoveMember(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	view := decodeView(t, rec)
	if view.Outcome.Result != "ownership_transferred" {
		t.Errorf("outcome: got %q", view.Outcome.Result)
	}
	if view.Outcome.NewOwnerID != mod.Hex() {
		t.Errorf("new owner: got %q, want %s", view.Outcome.NewOwnerID, mod.Hex())
	}
	if view.Group.OwnerID != mod {
		t.Errorf("persisted owner: got %s", view.Group.OwnerID.Hex())
	}
}

func TestHandleRemoveMember_OwnerWithoutModerators(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	group := fx.CreateGroup(ctx, "Chess Club", owner, models.VisibilityPublic)

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/groups/x/members/y",
		testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", owner.Hex())
	rec := testutil.NewRecorder()

	h.HandleRemoveMember(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "moderator")
}

func TestHandleDeleteGroup_OwnerOnly(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := fx.CreateGroupWithMembers(ctx, "Chess Club", owner, models.VisibilityPublic, member)

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/groups/x",
		testutil.UserWithID(member, "Member"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDeleteGroup(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/groups/x",
		testutil.UserWithID(owner, "Owner"))
	req = testutil.WithChiURLParam(req, "id", group.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDeleteGroup(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNoContent)

	if _, err := groupstore.New(fx.DB()).GetByID(ctx, group.ID); err == nil {
		t.Error("group still present after delete")
	}
}

func TestServeGroupsList_Paged(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	member := primitive.NewObjectID()
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		fx.CreateGroup(ctx, name, member, models.VisibilityPublic)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/groups?limit=2",
		testutil.UserWithID(member, "Member"))
	rec := testutil.NewRecorder()
	h.ServeGroupsList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var page struct {
		Groups []models.Group `json:"groups"`
		Next   string         `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad list response: %v", err)
	}
	if len(page.Groups) != 2 || page.Next == "" {
		t.Fatalf("first page: got %d groups, next=%q", len(page.Groups), page.Next)
	}

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/groups?limit=2&after="+page.Next,
		testutil.UserWithID(member, "Member"))
	rec = testutil.NewRecorder()
	h.ServeGroupsList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad list response: %v", err)
	}
	if len(page.Groups) != 1 {
		t.Errorf("second page: got %d groups, want 1", len(page.Groups))
	}
}
