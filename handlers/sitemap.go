package handlers

import (
	"agency_site_go/middleware"
	"agency_site_go/services/i18n"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type SitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type SitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   float32       `xml:"priority,omitempty"`
	Links      []SitemapLink `xml:"xhtml:link"`
}

type SitemapURLSet struct {
	XMLName    string       `xml:"urlset"`
	Xmlns      string       `xml:"xmlns,attr"`
	XmlnsXHTML string       `xml:"xmlns:xhtml,attr"`
	URLs       []SitemapURL `xml:"url"`
}

// GetSitemapHandler lists the public pages with their language alternates
func GetSitemapHandler(c echo.Context) error {
	baseURL := strings.TrimRight(middleware.GetConfig(c).AppURL, "/")

	var urls []SitemapURL
	for page, meta := range pageSEO {
		if meta.Private || meta.Path == "" {
			continue
		}
		loc := baseURL + meta.Path
		entry := SitemapURL{Loc: loc, ChangeFreq: "weekly", Priority: 0.8}
		if page == "landing" {
			entry.Priority = 1.0
		}
		for _, lang := range i18n.SupportedLocales {
			entry.Links = append(entry.Links, SitemapLink{Rel: "alternate", Hreflang: lang, Href: loc + "?lang=" + lang})
		}
		urls = append(urls, entry)
	}

	urlSet := SitemapURLSet{
		Xmlns:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsXHTML: "http://www.w3.org/1999/xhtml",
		URLs:       urls,
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(c.Response().Writer)
	encoder.Indent("", "  ")
	return encoder.Encode(urlSet)
}

// RobotsHandler keeps crawlers out of the admin and API routes
func RobotsHandler(c echo.Context) error {
	baseURL := strings.TrimRight(middleware.GetConfig(c).AppURL, "/")
	body := strings.Join([]string{
		"User-agent: *",
		"Allow: /",
		"Disallow: /admin",
		"Disallow: /api/",
		"Disallow: /debug/",
		"",
		"Sitemap: " + baseURL + "/sitemap.xml",
		"",
	}, "\n")
	return c.String(http.StatusOK, body)
}
