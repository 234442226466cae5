package handlers

import (
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/pages"
	"agency_site_go/templates/partials"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// DashboardPath is where a signed-in admin lands
const DashboardPath = "/admin"

// LoginHandler renders the admin login page
func LoginHandler(c echo.Context) error {
	return render(c, http.StatusOK, pages.Login(pages.LoginPage{Page: newPage(c, "login")}))
}

// loginErrorKey maps a sign-in failure to the message shown to the admin.
// Everything except a locked account gets the same generic message.
func loginErrorKey(err error) string {
	if errors.Is(err, services.ErrAccountLocked) {
		return "admin.login.locked"
	}
	return "admin.login.invalid"
}

// loginFailureStatus is the status of a full-page login failure
func loginFailureStatus(err error) int {
	if errors.Is(err, services.ErrProviderUnavailable) || errors.Is(err, services.ErrNotInitialized) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}

func loginFailed(c echo.Context, status int, email, key string) error {
	if middleware.IsHTMX(c) {
		return render(c, http.StatusOK, partials.LoginError(key))
	}
	return render(c, status, pages.Login(pages.LoginPage{
		Page:     newPage(c, "login"),
		Email:    email,
		ErrorKey: key,
	}))
}

// LoginPostHandler signs the admin in and sets the session cookie
func LoginPostHandler(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if email == "" || password == "" {
		return loginFailed(c, http.StatusBadRequest, email, "admin.login.required")
	}

	deps := middleware.GetDeps(c)
	if deps == nil || deps.Identity == nil {
		log.Printf("[WARNING] Admin login attempted before the identity provider was configured")
		return loginFailed(c, http.StatusServiceUnavailable, email, "admin.login.invalid")
	}

	store := services.NewSessionStore(deps.Identity)
	defer store.Dispose()

	meta := middleware.ClientMeta(c)
	session, err := store.SignIn(c.Request().Context(), email, password, meta)
	if err != nil {
		status := loginFailureStatus(err)
		if status == http.StatusUnauthorized && services.Monitor != nil {
			services.Monitor.TrackFailedLogin(meta.IPAddress)
		}
		log.Printf("[SECURITY] Failed admin login for %s from %s: %v", email, meta.IPAddress, err)
		return loginFailed(c, status, email, loginErrorKey(err))
	}

	if services.Monitor != nil {
		services.Monitor.TrackSuccessfulLogin(meta.IPAddress)
	}
	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt)
	services.LogAuditEvent(deps.Handle, services.AuditContextFromSession(session, meta),
		models.AuditActionLogin, "AdminUser", session.AdminUserID, "Admin signed in")

	return middleware.Redirect(c, DashboardPath)
}

// LogoutHandler signs the admin out. The cookie is cleared and the client
// redirected even when the backend sign-out fails.
func LogoutHandler(c echo.Context) error {
	actx := middleware.GetAuditContext(c)
	path := newDashboard(c).SignOutAndRedirect(c.Request().Context())
	middleware.ClearSessionCookie(c)

	if deps := middleware.GetDeps(c); deps != nil && actx.AdminUserID != "" {
		services.LogAuditEvent(deps.Handle, actx, models.AuditActionLogout, "AdminUser", actx.AdminUserID, "Admin signed out")
	}
	return middleware.Redirect(c, path)
}

// AdminLoadingHandler is shown while the identity backend is still starting.
// It is never a redirect to the login page.
func AdminLoadingHandler(c echo.Context) error {
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("Retry-After", "2")
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return render(c, http.StatusOK, pages.AdminLoading(newPage(c, "admin")))
}
