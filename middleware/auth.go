package middleware

import (
	"agency_site_go/models"
	"agency_site_go/services"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the admin session cookie
	SessionCookieName = "codebear_admin_session"
	// ContextKeySession is the context key for the admin session
	ContextKeySession = "session"
	// ContextKeySessionStore is the context key for the request's session store
	ContextKeySessionStore = "session_store"
)

// IsHTMX reports whether the request came from htmx
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// Redirect sends the client to path, using HX-Redirect for htmx requests
func Redirect(c echo.Context, path string) error {
	if IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

// SessionToken returns the session cookie value, or ""
func SessionToken(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAdmin resolves the session cookie into a SessionStore and gates the
// route on it. While the identity backend is still starting, onLoading renders
// instead of redirecting.
func RequireAdmin(onLoading echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deps := GetDeps(c)
			if deps == nil || deps.Identity == nil {
				return onLoading(c)
			}

			token := SessionToken(c)
			store := services.NewSessionStore(deps.Identity)
			defer store.Dispose()

			snapshot := store.Restore(c.Request().Context(), token)
			switch services.GateFor(snapshot) {
			case services.GateLoading:
				return onLoading(c)
			case services.GateRedirect:
				if token != "" {
					ClearSessionCookie(c)
				}
				if IsHTMX(c) {
					c.Response().Header().Set("HX-Redirect", services.LoginPath)
					return c.NoContent(http.StatusUnauthorized)
				}
				return c.Redirect(http.StatusSeeOther, services.LoginPath)
			}

			c.Set(ContextKeySessionStore, store)
			c.Set(ContextKeySession, snapshot.Session)
			return next(c)
		}
	}
}

// RedirectIfAdmin sends an already signed-in admin from the login page to the
// dashboard
func RedirectIfAdmin(dashboardPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deps := GetDeps(c)
			token := SessionToken(c)
			if deps == nil || deps.Identity == nil || token == "" || !deps.Identity.Ready() {
				return next(c)
			}
			if _, err := deps.Identity.Lookup(c.Request().Context(), token); err == nil {
				return Redirect(c, dashboardPath)
			}
			return next(c)
		}
	}
}

// GetSession retrieves the admin session set by RequireAdmin
func GetSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// GetSessionStore retrieves the session store set by RequireAdmin
func GetSessionStore(c echo.Context) *services.SessionStore {
	store, ok := c.Get(ContextKeySessionStore).(*services.SessionStore)
	if !ok {
		return nil
	}
	return store
}

// ClientMeta describes the caller for session and audit records
func ClientMeta(c echo.Context) services.ClientMeta {
	return services.ClientMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// SetSessionCookie stores token until expiresAt
func SetSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   GetConfig(c).IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   GetConfig(c).IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
