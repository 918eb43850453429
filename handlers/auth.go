package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/sessions"
	"github.com/wanderlist/wanderlist/internal/tokens"
	"github.com/wanderlist/wanderlist/internal/users"
	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/metrics"
	"github.com/wanderlist/wanderlist/pkg/middleware"
)

// LoginProvider is the authorization-code flow against the identity provider.
type LoginProvider interface {
	AuthCodeURL(state, nonce string) string
	Exchange(ctx context.Context, code, nonce string) (models.Principal, error)
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	provider    LoginProvider
	usersSvc    middleware.UserResolver
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, p LoginProvider, u middleware.UserResolver, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, provider: p, usersSvc: u, sessionsSvc: s}
}

// Register adds /login, /auth and /logout
func (h *AuthHandler) Register(r gin.IRoutes) {
	r.GET("/login", h.Login)
	r.GET("/auth", h.Callback)
	r.GET("/logout", h.Logout)
}

// RegisterLoginUnavailable answers /login and /auth with 503 when no provider could be discovered.
func RegisterLoginUnavailable(r gin.IRoutes) {
	unavailable := func(c *gin.Context) {
		renderError(c, http.StatusServiceUnavailable, "Login is unavailable right now.")
	}
	r.GET("/login", unavailable)
	r.GET("/auth", unavailable)
}

// Login starts the authorization-code flow, or goes home when already logged in.
func (h *AuthHandler) Login(c *gin.Context) {
	if _, _, ok := middleware.PrincipalFrom(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	login, err := h.sessionsSvc.BeginLogin(c.Request.Context())
	if err != nil {
		logger.Errorf("begin login: %v", err)
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}
	if err := setSessionCookie(c, h.cfg, login.ID, h.sessionsSvc.LoginTTL()); err != nil {
		logger.Errorf("session cookie: %v", err)
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(login.State, login.Nonce))
}

// Callback completes the flow: state and nonce are checked, the user is
// resolved and the pending login is replaced by a fresh session.
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	if e := c.Query("error"); e != "" {
		logger.Warnf("identity provider returned error=%s description=%q", e, c.Query("error_description"))
		metrics.Logins.WithLabelValues("denied").Inc()
		renderError(c, http.StatusUnauthorized, "Login was cancelled or denied.")
		return
	}

	var loginID string
	if s := middleware.SessionFrom(c); s != nil {
		loginID = s.ID
	}
	pending, err := h.sessionsSvc.PendingLogin(ctx, loginID, c.Query("state"))
	if err != nil {
		logger.Warnf("callback rejected: %v", err)
		metrics.Logins.WithLabelValues("invalid").Inc()
		if errors.Is(err, sessions.ErrLoginNotFound) || errors.Is(err, sessions.ErrStateMismatch) {
			renderError(c, http.StatusBadRequest, "Your login expired. Please try again.")
			return
		}
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}

	principal, err := h.provider.Exchange(ctx, c.Query("code"), pending.Nonce)
	if err != nil {
		logger.Warnf("auth-code exchange failed: %v", err)
		metrics.Logins.WithLabelValues("invalid").Inc()
		renderError(c, http.StatusUnauthorized, "We could not verify your login.")
		return
	}

	u, err := h.usersSvc.Resolve(ctx, principal)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Errorf("resolve user %s: %v", principal.Email, err)
		if errors.Is(err, users.ErrConstraintViolation) {
			renderError(c, http.StatusInternalServerError, "That display name is already used by another account.")
			return
		}
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}

	sess, err := h.sessionsSvc.Authenticate(ctx, pending.ID, principal, u.ID)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Errorf("failed to create session: %v", err)
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}
	if err := setSessionCookie(c, h.cfg, sess.ID, h.sessionsSvc.TTL()); err != nil {
		logger.Errorf("session cookie: %v", err)
		renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	logger.Infof("login: user=%d email=%s", u.ID, u.Email)
	c.Redirect(http.StatusFound, "/")
}

// Logout removes the server-side session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if s := middleware.SessionFrom(c); s != nil {
		if err := h.sessionsSvc.Delete(c.Request.Context(), s.ID); err != nil {
			logger.Errorf("failed to remove session: %v", err)
		}
	}
	clearSessionCookie(c, h.cfg)
	c.Redirect(http.StatusFound, "/")
}

func setSessionCookie(c *gin.Context, cfg *config.Config, sid string, ttl time.Duration) error {
	tok, err := tokens.GenerateSessionToken(cfg, sid, ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Session.CookieName, tok, int(ttl.Seconds()), "/", "", cfg.Session.Secure, true)
	return nil
}

func clearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Session.CookieName, "", -1, "/", "", cfg.Session.Secure, true)
}
