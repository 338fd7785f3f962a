// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/crewhub-app/crewhub/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema reconciles the indexes the stores depend on. The unique
// indexes here back store-level guarantees (one group per folded name,
// one conversation per group), so startup fails fast if they cannot be
// created.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
