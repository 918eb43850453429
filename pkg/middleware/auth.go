package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/sessions"
	"github.com/wanderlist/wanderlist/internal/tokens"
	"github.com/wanderlist/wanderlist/pkg/logger"
)

// Context keys set by the middlewares in this package.
const (
	ClaimsKey    = "claims"
	PrincipalKey = "principal"
	UserIDKey    = "userID"
	SessionKey   = "session"
)

// ErrNotAuthenticated is reported when a route needs a principal and none is attached.
var ErrNotAuthenticated = errors.New("not authenticated")

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// SessionStore looks up server-side sessions by id.
type SessionStore interface {
	Lookup(ctx context.Context, id string) (*sessions.Session, error)
}

// UserResolver maps a verified principal to its user record.
type UserResolver interface {
	Resolve(ctx context.Context, p models.Principal) (*models.User, error)
}

// Sessions attaches the session named by the signed cookie, if any. It never aborts.
func Sessions(cfg *config.Config, store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		sid, err := tokens.ParseSessionToken(cfg, raw)
		if err != nil {
			logger.Debugf("ignoring session cookie: %v", err)
			c.Next()
			return
		}
		sess, err := store.Lookup(c.Request.Context(), sid)
		if err != nil {
			logger.Errorf("session lookup failed: %v", err)
			c.Next()
			return
		}
		if sess != nil {
			c.Set(SessionKey, sess)
			if sess.Authenticated() {
				c.Set(PrincipalKey, *sess.Principal)
				c.Set(UserIDKey, sess.UserID)
			}
		}
		c.Next()
	}
}

// RequireLogin redirects browsers without an authenticated session to /login.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := PrincipalFrom(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthMiddleware accepts an authenticated session or verifies a Bearer ID token
// and resolves it to a user.
func AuthMiddleware(ver Verifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrNotAuthenticated.Error()})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		// Extract claims
		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		p, ok := models.PrincipalFromClaims(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no email claim"})
			return
		}
		u, err := users.Resolve(c.Request.Context(), p)
		if err != nil {
			logger.Errorf("resolve bearer principal %s: %v", p.Email, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(PrincipalKey, p)
		c.Set(UserIDKey, u.ID)
		c.Next()
	}
}

// PrincipalFrom returns the principal and user id attached by Sessions or AuthMiddleware.
func PrincipalFrom(c *gin.Context) (models.Principal, uint, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return models.Principal{}, 0, false
	}
	p, ok := v.(models.Principal)
	if !ok {
		return models.Principal{}, 0, false
	}
	id, _ := c.Get(UserIDKey)
	uid, _ := id.(uint)
	return p, uid, uid != 0
}

// SessionFrom returns the session attached by Sessions, authenticated or not.
func SessionFrom(c *gin.Context) *sessions.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*sessions.Session)
	return s
}
