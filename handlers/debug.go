package handlers

import (
	"agency_site_go/config"
	"agency_site_go/middleware"
	"agency_site_go/services"
	"agency_site_go/templates/pages"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

const debugAuditLimit = 20

// DebugConfigHandler shows which environment values are present and well
// formed, with secrets masked. It also lists recent security alerts and admin
// activity. It does not exist in production.
func DebugConfigHandler(c echo.Context) error {
	if middleware.GetConfig(c).IsProduction() {
		return NotFoundHandler(c)
	}

	data := pages.DebugConfigPage{
		Page:        newPage(c, "debug"),
		Diagnostics: config.DiagnoseEnv(),
	}
	if services.Monitor != nil {
		data.Alerts = services.Monitor.GetRecentAlerts()
	}
	if deps := middleware.GetDeps(c); deps != nil {
		if conn, err := deps.Handle.Conn(); err == nil {
			logs, err := services.RecentAuditLogs(c.Request().Context(), conn, debugAuditLimit)
			if err != nil {
				log.Printf("[WARNING] Failed to load audit log: %v", err)
			}
			data.AuditLogs = logs
		}
	}

	return render(c, http.StatusOK, pages.DebugConfig(data))
}
