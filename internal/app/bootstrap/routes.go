// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/crewhub-app/crewhub/internal/app/chatbridge"
	chatfeature "github.com/crewhub-app/crewhub/internal/app/features/chat"
	groupsfeature "github.com/crewhub-app/crewhub/internal/app/features/groups"
	healthfeature "github.com/crewhub-app/crewhub/internal/app/features/health"
	"github.com/crewhub-app/crewhub/internal/app/governance"
	conversationstore "github.com/crewhub-app/crewhub/internal/app/store/conversations"
	groupstore "github.com/crewhub-app/crewhub/internal/app/store/groups"
	messagestore "github.com/crewhub-app/crewhub/internal/app/store/messages"
	"github.com/crewhub-app/crewhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. CrewHub applies the session
// middleware globally, then mounts the health endpoint and the two
// group-scoped feature routers: governance (lifecycle, join requests,
// invites, roles) and chat (conversation and messages).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, appCfg.APITokenHash, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	gov := governance.New(groupstore.New(db), logger)
	bridge := chatbridge.New(groupstore.New(db), conversationstore.New(db), messagestore.New(db), logger)

	r := chi.NewRouter()

	// Global auth middleware: resolves the acting user into context.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Both features live under /groups: governance (lifecycle, join
	// requests, invites, roles) and chat (conversation and messages).
	groupsHandler := groupsfeature.NewHandler(db, gov, logger)
	chatHandler := chatfeature.NewHandler(bridge, logger)
	groupsRouter := groupsfeature.Routes(groupsHandler, sessionMgr)
	chatfeature.Routes(groupsRouter, chatHandler, sessionMgr)
	r.Mount("/groups", groupsRouter)

	return r, nil
}
