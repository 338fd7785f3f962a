// internal/app/features/groups/handler.go
package groups

import (
	"encoding/json"
	"net/http"

	"github.com/crewhub-app/crewhub/internal/app/governance"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// It holds the Mongo database, the governance service, and the logger
// so the various handlers (create, view, list, membership actions) can
// all share the same core dependencies.
type Handler struct {
	DB  *mongo.Database
	Gov *governance.Service
	Log *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function, where the application's
// DB, governance service, and logger are already initialized.
func NewHandler(db *mongo.Database, gov *governance.Service, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Gov: gov,
		Log: logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
