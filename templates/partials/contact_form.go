package partials

import (
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/components"

	"github.com/a-h/templ"
)

// ContactFormView is what the contact form renders from
type ContactFormView struct {
	Status           services.FormStatus
	Fields           models.ContactFields
	ErrorKey         string
	CSRF             string
	Services         []string
	TurnstileSiteKey string
	DismissAfterMs   int64
}

// ContactFormViewFromState maps a form state to its view
func ContactFormViewFromState(state services.ContactFormState, csrf, turnstileSiteKey string, dismissAfterMs int64) ContactFormView {
	view := ContactFormView{
		Status:           state.Status,
		Fields:           state.Fields,
		CSRF:             csrf,
		Services:         models.ServiceCategories,
		TurnstileSiteKey: turnstileSiteKey,
		DismissAfterMs:   dismissAfterMs,
	}
	if state.Status == services.FormError {
		view.ErrorKey = ContactErrorKey(state.Category)
	}
	return view
}

// ContactErrorKey is the i18n key for an error category
func ContactErrorKey(category services.ErrorCategory) string {
	if category == services.CategoryNone {
		category = services.CategoryGeneric
	}
	return "contact.form.error." + string(category)
}

// ContactForm renders the contact form with its status banner
func ContactForm(view ContactFormView) templ.Component {
	return components.Render("contact_form", view)
}
