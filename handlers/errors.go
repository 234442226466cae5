package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler renders the 404 page for unknown HTML routes and JSON
// errors under /api/. Everything else goes to echo's default handler.
func NewHTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			if code >= http.StatusInternalServerError {
				log.Printf("[WARNING] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			}
			if jsonErr := c.JSON(code, map[string]string{"error": strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))}); jsonErr != nil {
				log.Printf("[WARNING] Failed to write error response: %v", jsonErr)
			}
			return
		}

		if code == http.StatusNotFound && c.Request().Method == http.MethodGet {
			if renderErr := NotFoundHandler(c); renderErr != nil {
				log.Printf("[WARNING] Failed to render 404 page: %v", renderErr)
			}
			return
		}

		e.DefaultHTTPErrorHandler(err, c)
	}
}
