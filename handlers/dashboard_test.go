package handlers

import (
	"agency_site_go/services"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler(t *testing.T) {
	t.Run("Lists submissions", func(t *testing.T) {
		deps, conn := setupDeps(t)
		token := signIn(t, deps, conn)
		seedSubmission(t, deps, "Ann Example")

		rec, err := serveAdmin(deps, http.MethodGet, "/admin", token, DashboardHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "Ann Example")
		assert.Contains(t, body, testAdminEmail)
		assert.Contains(t, body, "mailto:visitor@example.com")
		assert.Contains(t, body, "Shopify Development")
	})

	t.Run("Empty state", func(t *testing.T) {
		deps, conn := setupDeps(t)
		token := signIn(t, deps, conn)

		rec, err := serveAdmin(deps, http.MethodGet, "/admin/submissions", token, SubmissionsHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `id="submissions"`)
		assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
		assert.NotContains(t, rec.Body.String(), "submission-")
	})
}

func TestMarkReadHandler(t *testing.T) {
	deps, conn := setupDeps(t)
	token := signIn(t, deps, conn)
	id := seedSubmission(t, deps, "Ann Example")

	rec, err := serveAdmin(deps, http.MethodPost, "/admin/submissions/"+id+"/read", token, MarkReadHandler, "id", id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	subs, err := deps.Submissions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Read)
	assert.NotContains(t, rec.Body.String(), "/read")
}

func TestMarkReadHandler_UnknownID(t *testing.T) {
	deps, conn := setupDeps(t)
	token := signIn(t, deps, conn)
	seedSubmission(t, deps, "Ann Example")

	rec, err := serveAdmin(deps, http.MethodPost, "/admin/submissions/missing/read", token, MarkReadHandler, "id", "missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert-warning")

	subs, err := deps.Submissions.List(context.Background())
	require.NoError(t, err)
	assert.False(t, subs[0].Read)
}

func TestDeleteSubmissionHandler(t *testing.T) {
	t.Run("Requires confirmation", func(t *testing.T) {
		deps, conn := setupDeps(t)
		token := signIn(t, deps, conn)
		id := seedSubmission(t, deps, "Ann Example")

		_, err := serveAdmin(deps, http.MethodDelete, "/admin/submissions/"+id, token, DeleteSubmissionHandler, "id", id)
		require.NoError(t, err)

		subs, err := deps.Submissions.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("Deletes when confirmed", func(t *testing.T) {
		deps, conn := setupDeps(t)
		token := signIn(t, deps, conn)
		id := seedSubmission(t, deps, "Ann Example")
		seedSubmission(t, deps, "Bob Example")

		rec, err := serveAdmin(deps, http.MethodDelete, "/admin/submissions/"+id+"?confirm=true", token, DeleteSubmissionHandler, "id", id)
		require.NoError(t, err)
		assert.NotContains(t, rec.Body.String(), "Ann Example")
		assert.Contains(t, rec.Body.String(), "Bob Example")

		subs, err := deps.Submissions.List(context.Background())
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "Bob Example", subs[0].Name)
	})
}

func TestExportHandler(t *testing.T) {
	deps, conn := setupDeps(t)
	token := signIn(t, deps, conn)
	seedSubmission(t, deps, "Ann Example")

	rec, err := serveAdmin(deps, http.MethodGet, "/admin/export.xlsx", token, ExportHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.ExportContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="submissions_`)
	assert.Equal(t, "PK", rec.Body.String()[:2])
}
