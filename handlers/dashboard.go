package handlers

import (
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/components"
	"agency_site_go/templates/pages"
	"agency_site_go/templates/partials"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// newDashboard builds the per-request dashboard over the session store set by
// RequireAdmin
func newDashboard(c echo.Context) *services.Dashboard {
	store := middleware.GetSessionStore(c)
	if store == nil {
		var provider services.IdentityProvider
		if deps := middleware.GetDeps(c); deps != nil {
			provider = deps.Identity
		}
		store = services.NewSessionStore(provider)
		if provider == nil {
			store.Dispose()
		}
	}
	return services.NewDashboard(submissionRepository(c), store)
}

// loadDashboard loads the list. A failure is kept on the dashboard and shown
// in place of the list.
func loadDashboard(c echo.Context) *services.Dashboard {
	d := newDashboard(c)
	if err := d.LoadData(c.Request().Context()); err != nil {
		log.Printf("[WARNING] Dashboard load failed: %v", err)
	}
	return d
}

func renderSubmissionList(c echo.Context, d *services.Dashboard) error {
	return render(c, http.StatusOK, partials.SubmissionList(partials.SubmissionListViewFromDashboard(d)))
}

// DashboardHandler renders the admin dashboard
func DashboardHandler(c echo.Context) error {
	d := loadDashboard(c)

	adminEmail := ""
	if session := middleware.GetSession(c); session != nil {
		adminEmail = session.Email()
	}

	return render(c, http.StatusOK, pages.Dashboard(pages.DashboardPage{
		Page:       newPage(c, "admin"),
		AdminEmail: adminEmail,
		List:       partials.SubmissionListViewFromDashboard(d),
	}))
}

// SubmissionsHandler re-fetches the list for the refresh and empty-state buttons
func SubmissionsHandler(c echo.Context) error {
	return renderSubmissionList(c, loadDashboard(c))
}

// MarkReadHandler marks one submission read and returns the updated list
func MarkReadHandler(c echo.Context) error {
	id := c.Param("id")
	d := loadDashboard(c)

	if err := d.MarkRead(c.Request().Context(), id); err != nil {
		log.Printf("[WARNING] Mark read failed for %s: %v", id, err)
	} else if deps := middleware.GetDeps(c); deps != nil {
		services.LogAuditEvent(deps.Handle, middleware.GetAuditContext(c),
			models.AuditActionMarkRead, "ContactSubmission", id, "Submission marked as read")
	}
	return renderSubmissionList(c, d)
}

// DeleteSubmissionHandler deletes one submission. The client must confirm
// with ?confirm=true; without it nothing is deleted.
func DeleteSubmissionHandler(c echo.Context) error {
	id := c.Param("id")
	d := loadDashboard(c)

	var name string
	if sub, ok := d.Find(id); ok {
		name = sub.Name
	}

	err := d.DeleteOne(c.Request().Context(), id, func() bool {
		return c.QueryParam("confirm") == "true"
	})
	switch {
	case errors.Is(err, services.ErrDeleteNotConfirmed):
		// nothing changed
	case err != nil:
		log.Printf("[WARNING] Delete failed for %s: %v", id, err)
	default:
		if deps := middleware.GetDeps(c); deps != nil {
			services.LogAuditEvent(deps.Handle, middleware.GetAuditContext(c),
				models.AuditActionDelete, "ContactSubmission", id, fmt.Sprintf("Submission from %s deleted", name))
		}
	}
	return renderSubmissionList(c, d)
}

// ExportHandler downloads all submissions as an Excel workbook
func ExportHandler(c echo.Context) error {
	d := newDashboard(c)
	if err := d.LoadData(c.Request().Context()); err != nil {
		log.Printf("[WARNING] Export failed to load submissions: %v", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Submissions are not available right now")
	}

	submissions := d.Submissions()
	buf, err := services.ExportSubmissionsXLSX(submissions, middleware.GetLocale(c), components.Location)
	if err != nil {
		log.Printf("[WARNING] Export failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}

	if deps := middleware.GetDeps(c); deps != nil {
		services.LogAuditEvent(deps.Handle, middleware.GetAuditContext(c),
			models.AuditActionExport, "ContactSubmission", "", fmt.Sprintf("Exported %d submissions", len(submissions)))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, services.ExportFileName(time.Now())))
	return c.Blob(http.StatusOK, services.ExportContentType, buf.Bytes())
}
