package pages

import (
	"agency_site_go/config"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/components"
	"agency_site_go/templates/partials"

	"github.com/a-h/templ"
)

// Page carries what every full page needs in <head>
type Page struct {
	SEO              *models.SEO
	CSRF             string
	TurnstileSiteKey string
}

// LandingPage is the public one-pager
type LandingPage struct {
	Page
	Form            partials.ContactFormView
	ServiceKeys     []string
	StepKeys        []string
	PlanKeys        []string
	PopularPlan     string
	TestimonialKeys []string
	FAQKeys         []string
	StructuredData  interface{}
}

// Content keys in display order
var (
	StepKeys        = []string{"discover", "design", "build", "launch"}
	PlanKeys        = []string{"starter", "professional", "business", "enterprise"}
	PopularPlan     = "professional"
	TestimonialKeys = []string{"t1", "t2", "t3", "t4"}
	FAQKeys         = []string{"q1", "q2", "q3", "q4", "q5"}
)

// NewLandingPage fills the content keys around page and form
func NewLandingPage(page Page, form partials.ContactFormView, structuredData interface{}) LandingPage {
	return LandingPage{
		Page:            page,
		Form:            form,
		ServiceKeys:     models.ServiceCategories,
		StepKeys:        StepKeys,
		PlanKeys:        PlanKeys,
		PopularPlan:     PopularPlan,
		TestimonialKeys: TestimonialKeys,
		FAQKeys:         FAQKeys,
		StructuredData:  structuredData,
	}
}

// Landing renders the public landing page
func Landing(data LandingPage) templ.Component {
	return components.Render("landing", data)
}

// LoginPage is the admin sign-in form
type LoginPage struct {
	Page
	Email    string
	ErrorKey string
}

// Login renders the admin login page
func Login(data LoginPage) templ.Component {
	return components.Render("login", data)
}

// AdminLoading renders the indicator shown while the identity backend starts
func AdminLoading(page Page) templ.Component {
	return components.Render("admin_loading", page)
}

// DashboardPage is the admin submissions overview
type DashboardPage struct {
	Page
	AdminEmail string
	List       partials.SubmissionListView
}

// Dashboard renders the admin dashboard
func Dashboard(data DashboardPage) templ.Component {
	return components.Render("dashboard", data)
}

// DebugConfigPage shows masked configuration diagnostics
type DebugConfigPage struct {
	Page
	Diagnostics config.Diagnostics
	Alerts      []services.SecurityAlert
	AuditLogs   []models.AuditLog
}

// DebugConfig renders the configuration check page
func DebugConfig(data DebugConfigPage) templ.Component {
	return components.Render("debug_config", data)
}

// NotFound renders the 404 page
func NotFound(page Page) templ.Component {
	return components.Render("not_found", page)
}
