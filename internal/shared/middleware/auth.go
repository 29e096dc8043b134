package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contact-agenda/internal/domains/user"
	"contact-agenda/internal/shared"
	"contact-agenda/internal/shared/urls"
	"contact-agenda/pkg/logger"
	"contact-agenda/pkg/session"
)

// UserLoader resolves the account behind a session.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Auth ties the session cookie to the request-scoped current user.
type Auth struct {
	sessions *session.Manager
	users    UserLoader
	cookie   string
	secure   bool
}

func NewAuth(sessions *session.Manager, users UserLoader, cookieName string, secure bool) *Auth {
	return &Auth{sessions: sessions, users: users, cookie: cookieName, secure: secure}
}

// LoadSession resolves the session cookie and stores the user in the gin
// context. A stale or invalid session leaves the request anonymous.
func (a *Auth) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(a.cookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		rec, err := a.sessions.Resolve(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				logger.Warn("session lookup failed", map[string]interface{}{"error": err.Error()})
			}
			a.clearCookie(c)
			c.Next()
			return
		}

		u, err := a.users.GetByID(ctx, rec.UserID)
		switch {
		case errors.Is(err, user.ErrUserNotFound) || (err == nil && !a.sessionValid(rec, u)):
			_ = a.sessions.Destroy(ctx, token)
			a.clearCookie(c)
		case err != nil:
			logger.Error("failed to load session user", err)
		default:
			c.Set(shared.ContextKeyUser, u)
		}
		c.Next()
	}
}

// sessionValid drops sessions of deactivated users and sessions opened
// before the last password change.
func (a *Auth) sessionValid(rec *session.Record, u *user.User) bool {
	return u.IsActive && a.sessions.Verify(rec, u.PasswordHash)
}

// Login opens a session for u and makes it the current user.
func (a *Auth) Login(c *gin.Context, u *user.User) error {
	token, err := a.sessions.Create(c.Request.Context(), u.ID, u.PasswordHash)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookie, token, int(a.sessions.TTL().Seconds()), "/", "", a.secure, true)
	c.Set(shared.ContextKeyUser, u)
	return nil
}

// Refresh replaces the current session after u changed its password, so the
// visitor stays logged in while every other session of u is invalidated.
func (a *Auth) Refresh(c *gin.Context, u *user.User) error {
	if token, err := c.Cookie(a.cookie); err == nil && token != "" {
		if err := a.sessions.Destroy(c.Request.Context(), token); err != nil {
			logger.Warn("failed to destroy replaced session", map[string]interface{}{"error": err.Error()})
		}
	}
	return a.Login(c, u)
}

// Logout ends the current session, if any.
func (a *Auth) Logout(c *gin.Context) error {
	defer a.clearCookie(c)
	defer c.Set(shared.ContextKeyUser, nil)

	token, err := c.Cookie(a.cookie)
	if err != nil || token == "" {
		return nil
	}
	return a.sessions.Destroy(c.Request.Context(), token)
}

func (a *Auth) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookie, "", -1, "/", "", a.secure, true)
}

// RequireLogin redirects anonymous visitors to the login view, carrying the
// requested path in ?next=. Nothing after it runs for them.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, urls.LoginWithNext(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user of the request.
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(shared.ContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok && u != nil
}
