package partials

import (
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/components"

	"github.com/a-h/templ"
)

// SubmissionListView is the dashboard list with its banners
type SubmissionListView struct {
	Submissions []models.ContactSubmission
	Counts      services.SubmissionCounts
	LoadError   string
	NoticeKey   string
}

// SubmissionListViewFromDashboard snapshots d for rendering
func SubmissionListViewFromDashboard(d *services.Dashboard) SubmissionListView {
	view := SubmissionListView{
		Submissions: d.Submissions(),
		Counts:      d.Counts(),
	}
	if err := d.Error(); err != nil {
		view.LoadError = describeLoadError(err)
	}
	if n := d.Notice(); n != nil {
		view.NoticeKey = "admin.dashboard." + string(n.Kind)
	}
	return view
}

// SubmissionList renders the #submissions section
func SubmissionList(view SubmissionListView) templ.Component {
	return components.Render("submission_list", view)
}

// LoginError renders the login error banner for an i18n key
func LoginError(key string) templ.Component {
	return components.Render("login_error", key)
}
