package handlers

import (
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/services/i18n"
	"agency_site_go/templates/pages"
	"agency_site_go/templates/partials"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// render writes component as the HTML response body with status
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// LandingHandler renders the public one-pager with an idle contact form
func LandingHandler(c echo.Context) error {
	page := newPage(c, "landing")
	form := idleContactForm(page)
	return render(c, http.StatusOK, pages.Landing(pages.NewLandingPage(page, form, organizationSchema(c))))
}

func idleContactForm(page pages.Page) partials.ContactFormView {
	return partials.ContactFormViewFromState(
		services.ContactFormState{Status: services.FormIdle},
		page.CSRF, page.TurnstileSiteKey, contactResetDelay.Milliseconds(),
	)
}

// organizationSchema is the schema.org JSON-LD for the agency
func organizationSchema(c echo.Context) map[string]interface{} {
	lang := middleware.GetLocale(c)
	baseURL := strings.TrimRight(middleware.GetConfig(c).AppURL, "/")

	offers := make([]map[string]interface{}, 0, len(models.ServiceCategories))
	for _, service := range models.ServiceCategories {
		offers = append(offers, map[string]interface{}{
			"@type": "Offer",
			"itemOffered": map[string]interface{}{
				"@type": "Service",
				"name":  services.ServiceLabel(lang, service),
			},
		})
	}

	return map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "ProfessionalService",
		"name":        siteName,
		"url":         baseURL + "/",
		"logo":        baseURL + middleware.AssetURL("images/favicon.svg"),
		"description": i18n.Translate(lang, "meta.description"),
		"inLanguage":  lang,
		"areaServed":  []string{"AT", "DE", "CH"},
		"hasOfferCatalog": map[string]interface{}{
			"@type":           "OfferCatalog",
			"name":            i18n.Translate(lang, "nav.services"),
			"itemListElement": offers,
		},
	}
}

// NotFoundHandler renders the 404 page
func NotFoundHandler(c echo.Context) error {
	return render(c, http.StatusNotFound, pages.NotFound(newPage(c, "not_found")))
}
