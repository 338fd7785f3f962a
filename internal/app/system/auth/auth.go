// Package auth resolves the acting user for a request. Browser callers
// carry a session cookie written by the identity frontend; service
// callers present a bearer token checked against a bcrypt hash plus an
// X-Actor-ID header naming the subject they act as.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userLoginKey = "user_login"

	actorHeader = "X-Actor-ID"
)

// SessionUser is what we cache in the session and inject into r.Context().
type SessionUser struct {
	ID      string
	Name    string
	LoginID string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager owns the cookie store and the request middleware that
// turn session or token credentials into a SessionUser in context.
type SessionManager struct {
	store        *sessions.CookieStore
	name         string
	apiTokenHash string
	log          *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. An empty
// session key is allowed only for insecure (local dev) deployments, in
// which case a throwaway key is generated and sessions do not survive a
// restart. apiTokenHash may be empty to disable bearer-token access.
func NewSessionManager(sessionKey, name, domain string, secure bool, apiTokenHash string, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
		}
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("no session key configured; using a throwaway key for this process")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Bool("service_token_enabled", apiTokenHash != ""))

	return &SessionManager{
		store:        store,
		name:         name,
		apiTokenHash: apiTokenHash,
		log:          logger,
	}, nil
}

// CurrentUser returns the acting user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the acting user into context. A valid bearer
// service token takes precedence over the session cookie.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := sm.tokenUser(r); ok {
			next.ServeHTTP(w, withUser(r, u))
			return
		}

		sess, _ := sm.store.Get(r, sm.name)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			r = withUser(r, &SessionUser{
				ID:      getString(sess, userIDKey),
				Name:    getString(sess, userNameKey),
				LoginID: getString(sess, userLoginKey),
			})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures a user is in context, answering 401 with a
// JSON body otherwise.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	})
}

// tokenUser checks the Authorization header for a bearer service token.
// The token is bcrypt-compared against the configured hash, and the
// X-Actor-ID header names the user the caller acts as.
func (sm *SessionManager) tokenUser(r *http.Request) (*SessionUser, bool) {
	if sm.apiTokenHash == "" {
		return nil, false
	}
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sm.apiTokenHash), []byte(token)); err != nil {
		sm.log.Warn("service token rejected", zap.String("remote", r.RemoteAddr))
		return nil, false
	}
	actor := r.Header.Get(actorHeader)
	if actor == "" {
		return nil, false
	}
	return &SessionUser{ID: actor, Name: "service"}, true
}

// WithTestUser injects a user directly into the request context,
// bypassing the middleware. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
