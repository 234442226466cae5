package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingHandler(t *testing.T) {
	deps, _ := setupDeps(t)
	_, c, rec := setupEcho(http.MethodGet, "/", nil, deps)

	require.NoError(t, LandingHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `id="contact-form"`)
	assert.Contains(t, body, "application/ld+json")
	assert.Contains(t, body, `hreflang="de"`)
	assert.Contains(t, body, `<link rel="canonical" href="https://codebear.at/">`)
	assert.NotContains(t, body, "noindex")
}

func TestNotFoundHandler(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/nope", nil, nil)

	require.NoError(t, NotFoundHandler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
	assert.Contains(t, rec.Body.String(), "noindex")
}

func TestGetSEO(t *testing.T) {
	_, c, _ := setupEcho(http.MethodGet, "/", nil, nil)

	landing := GetSEO(c, "landing")
	require.NotNil(t, landing)
	assert.Equal(t, "https://codebear.at/", landing.Canonical)
	assert.NotEmpty(t, landing.Keywords)
	assert.Equal(t, []string{"en", "de"}, landing.AltLocales)

	login := GetSEO(c, "login")
	require.NotNil(t, login)
	assert.True(t, login.NoIndex)
	assert.Equal(t, "Admin Login | Code Bear", login.Title)

	assert.Nil(t, GetSEO(c, "unknown"))
}
