package middleware

import (
	"agency_site_go/config"
	"agency_site_go/db"
	"agency_site_go/services"

	"github.com/labstack/echo/v4"
)

// ContextKeyDeps is the context key for the request's Deps
const ContextKeyDeps = "deps"

// Deps are the long-lived services handlers work with
type Deps struct {
	Config      *config.Config
	Handle      *db.Handle
	Submissions services.SubmissionRepository
	Identity    services.IdentityProvider
	Storage     services.StorageProvider
}

// Inject makes deps and its config available to handlers
func Inject(deps *Deps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", deps.Config)
			c.Set(ContextKeyDeps, deps)
			return next(c)
		}
	}
}

// GetDeps retrieves the injected Deps
func GetDeps(c echo.Context) *Deps {
	deps, ok := c.Get(ContextKeyDeps).(*Deps)
	if !ok {
		return nil
	}
	return deps
}

// GetConfig retrieves the injected config, or an empty one
func GetConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}
