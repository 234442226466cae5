package handlers

import (
	"agency_site_go/db"
	"agency_site_go/middleware"
	"agency_site_go/services"
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginForm(email, password string) url.Values {
	f := url.Values{}
	f.Set("email", email)
	f.Set("password", password)
	return f
}

func TestLoginHandler(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/admin/login", nil, nil)

	require.NoError(t, LoginHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
	assert.Contains(t, rec.Body.String(), "noindex")
}

func TestLoginPostHandler(t *testing.T) {
	t.Run("Valid credentials", func(t *testing.T) {
		deps, conn := setupDeps(t)
		createAdmin(t, conn)
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, testAdminPassword), deps)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=")
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "HttpOnly")
	})

	t.Run("Valid credentials over HTMX", func(t *testing.T) {
		deps, conn := setupDeps(t)
		createAdmin(t, conn)
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(" ADMIN@codebear.at ", testAdminPassword), deps)
		setHTMX(c)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, DashboardPath, rec.Header().Get("HX-Redirect"))
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		deps, conn := setupDeps(t)
		createAdmin(t, conn)
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, "wrong"), deps)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
		assert.Contains(t, rec.Body.String(), `value="admin@codebear.at"`)
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})

	t.Run("Unknown email looks the same", func(t *testing.T) {
		deps, _ := setupDeps(t)
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm("nobody@codebear.at", "whatever"), deps)
		setHTMX(c)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
		assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("Locked after repeated failures", func(t *testing.T) {
		deps, conn := setupDeps(t)
		createAdmin(t, conn)
		for i := 0; i < 5; i++ {
			c, _ := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, "wrong"), deps)
			require.NoError(t, LoginPostHandler(c))
		}

		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, testAdminPassword), deps)
		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Account is locked.")
	})

	t.Run("Missing fields", func(t *testing.T) {
		deps, _ := setupDeps(t)
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, ""), deps)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email and password are required")
	})

	t.Run("Backend not ready", func(t *testing.T) {
		deps := newTestDeps(db.NewHandle())
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, testAdminPassword), deps)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})

	t.Run("Backend not ready over HTMX", func(t *testing.T) {
		deps := newTestDeps(db.NewHandle())
		c, rec := setupForm(http.MethodPost, "/admin/login", loginForm(testAdminEmail, testAdminPassword), deps)
		setHTMX(c)

		require.NoError(t, LoginPostHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
	})
}

func TestLoginErrorKey(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		key    string
		status int
	}{
		{"invalid credentials", &services.AuthError{Op: "sign-in", Err: services.ErrInvalidCredentials}, "admin.login.invalid", http.StatusUnauthorized},
		{"locked", &services.AuthError{Op: "sign-in", Err: services.ErrAccountLocked}, "admin.login.locked", http.StatusUnauthorized},
		{"provider unavailable", &services.AuthError{Op: "sign-in", Err: services.ErrProviderUnavailable}, "admin.login.invalid", http.StatusServiceUnavailable},
		{"not initialized", services.ErrNotInitialized, "admin.login.invalid", http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), "admin.login.invalid", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, loginErrorKey(tt.err))
			assert.Equal(t, tt.status, loginFailureStatus(tt.err))
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	deps, conn := setupDeps(t)
	token := signIn(t, deps, conn)

	rec, err := serveAdmin(deps, http.MethodPost, "/admin/logout", token, LogoutHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	_, err = deps.Identity.Lookup(context.Background(), token)
	assert.Error(t, err)
}

func TestAdminGate(t *testing.T) {
	t.Run("No session redirects to login", func(t *testing.T) {
		deps, _ := setupDeps(t)
		rec, err := serveAdmin(deps, http.MethodGet, "/admin", "", DashboardHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})

	t.Run("Stale cookie is cleared", func(t *testing.T) {
		deps, _ := setupDeps(t)
		rec, err := serveAdmin(deps, http.MethodGet, "/admin", "stale-token", DashboardHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})

	t.Run("Backend starting shows loading instead of login", func(t *testing.T) {
		deps := newTestDeps(db.NewHandle())
		rec, err := serveAdmin(deps, http.MethodGet, "/admin", "some-token", DashboardHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "data-reload-after")
		assert.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("Backend starting over HTMX", func(t *testing.T) {
		deps := newTestDeps(db.NewHandle())
		_, c, rec := setupEcho(http.MethodGet, "/admin/submissions", nil, deps)
		setHTMX(c)

		require.NoError(t, AdminLoadingHandler(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	})
}
