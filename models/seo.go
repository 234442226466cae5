package models

import "strings"

// SEO contains metadata for search engines and social previews
type SEO struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	OGTitle     string // defaults to Title
	OGDesc      string // defaults to Description
	OGImage     string
	OGType      string // website, article, ...
	TwitterCard string // summary, summary_large_image
	NoIndex     bool
	Locale      string
	AltLocales  []string // every language the page exists in, for hreflang
}

// DefaultSEO returns SEO with sensible defaults
func DefaultSEO(title, description string) *SEO {
	return &SEO{
		Title:       title,
		Description: description,
		OGType:      "website",
		TwitterCard: "summary_large_image",
	}
}

// WithCanonical sets the canonical URL
func (s *SEO) WithCanonical(url string) *SEO {
	s.Canonical = url
	return s
}

// WithLocale sets the current locale and the languages the page exists in
func (s *SEO) WithLocale(locale string, altLocales ...string) *SEO {
	s.Locale = locale
	s.AltLocales = altLocales
	return s
}

// WithNoIndex keeps the page out of search results
func (s *SEO) WithNoIndex() *SEO {
	s.NoIndex = true
	return s
}

// AlternateURL is the canonical URL with the language switch for lang
func (s *SEO) AlternateURL(lang string) string {
	if s.Canonical == "" {
		return "?lang=" + lang
	}
	sep := "?"
	if strings.Contains(s.Canonical, "?") {
		sep = "&"
	}
	return s.Canonical + sep + "lang=" + lang
}

// GetOGTitle returns OGTitle or falls back to Title
func (s *SEO) GetOGTitle() string {
	if s.OGTitle != "" {
		return s.OGTitle
	}
	return s.Title
}

// GetOGDesc returns OGDesc or falls back to Description
func (s *SEO) GetOGDesc() string {
	if s.OGDesc != "" {
		return s.OGDesc
	}
	return s.Description
}
