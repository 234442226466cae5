package components

import (
	"agency_site_go/middleware"
	"agency_site_go/services"
	"agency_site_go/services/i18n"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"
)

//go:embed views/*.html
var viewFS embed.FS

// views holds every view. It is never executed directly; each render works
// on a clone bound to the request context.
var views = template.Must(template.New("views").Funcs(funcs(context.Background())).ParseFS(viewFS, "views/*.html"))

// Location is the timezone timestamps are shown in
var Location = time.UTC

// SetLocation sets the display timezone by name, keeping UTC on error
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Location = loc
	return nil
}

// Render returns a component executing the named view with data
func Render(name string, data interface{}) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, err := views.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone views: %w", err)
		}
		if err := t.Funcs(funcs(ctx)).ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("failed to render %s: %w", name, err)
		}
		return nil
	})
}

func funcs(ctx context.Context) template.FuncMap {
	lang := i18n.GetLocale(ctx)
	return template.FuncMap{
		"t": func(key string, pairs ...interface{}) string {
			if len(pairs) == 0 {
				return i18n.Translate(lang, key)
			}
			args := make(map[string]interface{}, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				args[fmt.Sprint(pairs[i])] = pairs[i+1]
			}
			return i18n.Translate(lang, key, args)
		},
		"tk": func(parts ...interface{}) string {
			return i18n.Translate(lang, fmt.Sprint(parts...))
		},
		"lang":         func() string { return lang },
		"langs":        func() []string { return i18n.SupportedLocales },
		"nonce":        func() string { return middleware.GetNonce(ctx) },
		"asset":        middleware.AssetURL,
		"serviceLabel": func(service string) string { return services.ServiceLabel(lang, service) },
		"formatTime":   func(t time.Time) string { return services.FormatTimestamp(t, Location) },
		"isoTime":      func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"json":         func(v interface{}) template.JS { return template.JS(JSON(v)) },
		"year":         func() int { return time.Now().In(Location).Year() },
	}
}
