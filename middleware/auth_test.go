package middleware

import (
	"agency_site_go/config"
	"agency_site_go/models"
	"agency_site_go/services"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentity accepts exactly one token
type fakeIdentity struct {
	ready   bool
	token   string
	lookups int
}

func (f *fakeIdentity) Ready() bool { return f.ready }

func (f *fakeIdentity) SignInWithEmailPassword(ctx context.Context, email, password string, meta services.ClientMeta) (*models.Session, error) {
	return nil, &services.AuthError{Op: "sign-in", Err: services.ErrInvalidCredentials}
}

func (f *fakeIdentity) SignOut(ctx context.Context, token string) error { return nil }

func (f *fakeIdentity) Lookup(ctx context.Context, token string) (*models.Session, error) {
	f.lookups++
	if token != "" && token == f.token {
		return &models.Session{
			ID:          "session-1",
			AdminUserID: "admin-1",
			Token:       token,
			ExpiresAt:   time.Now().Add(time.Hour),
			AdminUser:   models.AdminUser{ID: "admin-1", Email: "admin@codebear.at", IsActive: true},
		}, nil
	}
	return nil, &services.AuthError{Op: "lookup", Err: services.ErrSessionInvalid}
}

func newAuthContext(identity services.IdentityProvider, token string, htmx bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	Inject(&Deps{Config: &config.Config{Environment: "test"}, Identity: identity})(func(echo.Context) error { return nil })(c)
	return c, rec
}

func loadingHandler(c echo.Context) error {
	return c.String(http.StatusServiceUnavailable, "loading")
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "dashboard")
}

func TestRequireAdmin(t *testing.T) {
	identity := &fakeIdentity{ready: true, token: "good"}

	t.Run("ValidSession", func(t *testing.T) {
		c, rec := newAuthContext(identity, "good", false)

		require.NoError(t, RequireAdmin(loadingHandler)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, GetSession(c))
		assert.Equal(t, "admin@codebear.at", GetSession(c).Email())
		assert.Equal(t, services.SessionActive, GetSessionStore(c).Current().State)
	})

	t.Run("NoCookieRedirects", func(t *testing.T) {
		c, rec := newAuthContext(identity, "", false)

		require.NoError(t, RequireAdmin(loadingHandler)(okHandler)(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, services.LoginPath, rec.Header().Get("Location"))
		assert.Nil(t, GetSession(c))
	})

	t.Run("InvalidSessionClearsCookie", func(t *testing.T) {
		c, rec := newAuthContext(identity, "stale", false)

		require.NoError(t, RequireAdmin(loadingHandler)(okHandler)(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		cleared := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == SessionCookieName && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})

	t.Run("HTMXRedirect", func(t *testing.T) {
		c, rec := newAuthContext(identity, "", true)

		require.NoError(t, RequireAdmin(loadingHandler)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, services.LoginPath, rec.Header().Get("HX-Redirect"))
	})

	t.Run("ProviderNotReadyShowsLoading", func(t *testing.T) {
		notReady := &fakeIdentity{ready: false, token: "good"}
		c, rec := newAuthContext(notReady, "good", false)

		require.NoError(t, RequireAdmin(loadingHandler)(okHandler)(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Zero(t, notReady.lookups)
	})
}

func TestRedirectIfAdmin(t *testing.T) {
	identity := &fakeIdentity{ready: true, token: "good"}

	c, rec := newAuthContext(identity, "good", false)
	require.NoError(t, RedirectIfAdmin("/admin")(okHandler)(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	c, rec = newAuthContext(identity, "stale", false)
	require.NoError(t, RedirectIfAdmin("/admin")(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedirect(t *testing.T) {
	c, rec := newAuthContext(nil, "", true)
	require.NoError(t, Redirect(c, "/admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("HX-Redirect"))
}

func TestSessionCookie(t *testing.T) {
	c, rec := newAuthContext(nil, "", false)
	SetSessionCookie(c, "tok", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)
	assert.Greater(t, cookies[0].MaxAge, 3500)
}

func TestAuditContext(t *testing.T) {
	identity := &fakeIdentity{ready: true, token: "good"}
	c, _ := newAuthContext(identity, "good", false)
	c.Request().Header.Set("User-Agent", "test-agent")

	handler := RequireAdmin(loadingHandler)(AuditContext()(func(c echo.Context) error {
		actx := GetAuditContext(c)
		assert.Equal(t, "admin-1", actx.AdminUserID)
		assert.Equal(t, "admin@codebear.at", actx.AdminEmail)
		assert.Equal(t, "test-agent", actx.UserAgent)
		return nil
	}))
	require.NoError(t, handler(c))
}

func TestGetDeps(t *testing.T) {
	c := echo.New().NewContext(nil, nil)
	assert.Nil(t, GetDeps(c))
	assert.NotNil(t, GetConfig(c))

	deps := &Deps{Config: &config.Config{AppURL: "https://codebear.at"}}
	require.NoError(t, Inject(deps)(func(echo.Context) error { return nil })(c))
	assert.Same(t, deps, GetDeps(c))
	assert.Equal(t, "https://codebear.at", GetConfig(c).AppURL)
}
