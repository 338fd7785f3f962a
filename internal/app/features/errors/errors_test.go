package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewhub-app/crewhub/internal/app/chatbridge"
	apierrors "github.com/crewhub-app/crewhub/internal/app/features/errors"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	"github.com/crewhub-app/crewhub/internal/app/policy/membership"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestWriteDomain_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", governance.ErrNotFound, http.StatusNotFound, "not_found"},
		{"no documents", mongo.ErrNoDocuments, http.StatusNotFound, "not_found"},
		{"unauthorized rule", fmt.Errorf("%w: only the owner may approve", membership.ErrUnauthorized), http.StatusForbidden, "unauthorized"},
		{"not conversation member", chatbridge.ErrNotConversationMember, http.StatusForbidden, "unauthorized"},
		{"invalid operation", fmt.Errorf("%w: must be a member first", membership.ErrInvalidOperation), http.StatusBadRequest, "invalid_operation"},
		{"empty message", chatbridge.ErrEmptyMessage, http.StatusBadRequest, "invalid_operation"},
		{"duplicate name", groupstore.ErrDuplicateGroupName, http.StatusBadRequest, "invalid_operation"},
		{"store unavailable", fmt.Errorf("%w: connection reset", governance.ErrStoreUnavailable), http.StatusServiceUnavailable, "store_unavailable"},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			apierrors.WriteDomain(rec, zap.NewNop(), tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tc.wantStatus)
			}
			var body apierrors.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body.Error != tc.wantCode {
				t.Errorf("code: got %q, want %q", body.Error, tc.wantCode)
			}
		})
	}
}

func TestWriteDomain_DoesNotLeakInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	apierrors.WriteDomain(rec, zap.NewNop(), fmt.Errorf("%w: dial tcp 10.0.0.5:27017", governance.ErrStoreUnavailable))

	var body apierrors.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Detail != "try again shortly" {
		t.Errorf("detail leaked internals: %q", body.Detail)
	}
}

func TestWriteBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	apierrors.WriteBadRequest(rec, "invalid group id")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	var body apierrors.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Error != "bad_request" || body.Detail != "invalid group id" {
		t.Errorf("body: %+v", body)
	}
}
