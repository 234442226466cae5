package handlers

import (
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services/i18n"
	"agency_site_go/templates/pages"
	"strings"

	"github.com/labstack/echo/v4"
)

const siteName = "Code Bear"

type pageMeta struct {
	Path     string
	TitleKey string
	DescKey  string
	// Private pages stay out of search results
	Private bool
}

// SEO configurations per page
var pageSEO = map[string]pageMeta{
	"landing":   {Path: "/", TitleKey: "meta.title", DescKey: "meta.description"},
	"login":     {Path: "/admin/login", TitleKey: "admin.login.title", DescKey: "admin.login.subtitle", Private: true},
	"admin":     {Path: "/admin", TitleKey: "admin.dashboard.title", DescKey: "admin.dashboard.title", Private: true},
	"debug":     {Path: "/debug/config", TitleKey: "debug.title", DescKey: "debug.title", Private: true},
	"not_found": {TitleKey: "not_found.title", DescKey: "not_found.title", Private: true},
}

// GetSEO returns the localized SEO metadata for a page, or nil for unknown pages
func GetSEO(c echo.Context, page string) *models.SEO {
	meta, ok := pageSEO[page]
	if !ok {
		return nil
	}

	lang := middleware.GetLocale(c)
	title := i18n.Translate(lang, meta.TitleKey)
	if page != "landing" {
		title += " | " + siteName
	}

	seo := models.DefaultSEO(title, i18n.Translate(lang, meta.DescKey)).
		WithLocale(lang, i18n.SupportedLocales...)
	if meta.Path != "" {
		seo.WithCanonical(strings.TrimRight(middleware.GetConfig(c).AppURL, "/") + meta.Path)
	}
	if meta.Private {
		seo.WithNoIndex()
		seo.TwitterCard = "summary"
		seo.AltLocales = nil
	} else {
		seo.Keywords = i18n.Translate(lang, "meta.keywords")
	}
	return seo
}

// newPage collects what every full page renders in <head>
func newPage(c echo.Context, page string) pages.Page {
	seo := GetSEO(c, page)
	if seo == nil {
		seo = GetSEO(c, "not_found")
	}
	return pages.Page{
		SEO:              seo,
		CSRF:             middleware.GetCSRFToken(c),
		TurnstileSiteKey: middleware.GetConfig(c).TurnstileSiteKey,
	}
}
