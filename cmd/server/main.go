package main

import (
	"agency_site_go/config"
	"agency_site_go/db"
	"agency_site_go/handlers"
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/services/i18n"
	"agency_site_go/services/jobs"
	"agency_site_go/templates/components"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Check environment values before anything depends on them
	if err := config.DiagnoseEnv().Err(); err != nil {
		if cfg.IsProduction() {
			log.Fatalf("[CRITICAL] Invalid configuration: %v", err)
		}
		log.Printf("[WARNING] Configuration problems (see /debug/config): %v", err)
	}

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	middleware.InitAssetVersions(cfg.StaticDir)
	if err := components.SetLocation(cfg.JobsTimezone); err != nil {
		log.Printf("[WARNING] Unknown timezone %q, showing times in UTC: %v", cfg.JobsTimezone, err)
	}

	// The server starts right away; the database attaches when it is ready.
	// Until then the contact form reports "not initialized" and the admin
	// area shows its loading state.
	handle := db.NewHandle()
	go connectDatabase(cfg, handle)
	defer handle.Close()

	services.InitSecurityMonitor(cfg)
	storage := services.InitializeStorage(cfg)

	submissions := services.NewSubmissionRepository(handle)
	identity := services.NewDBIdentityProvider(handle, cfg.SessionSecret)

	scheduler := jobs.StartScheduler(jobs.Deps{
		Config:      cfg,
		Submissions: submissions,
		Identity:    identity,
		Storage:     storage,
	})
	defer scheduler.Stop()

	deps := &middleware.Deps{
		Config:      cfg,
		Handle:      handle,
		Submissions: submissions,
		Identity:    identity,
		Storage:     storage,
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(e)

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(middleware.CSPNonce())
	e.Use(middleware.Inject(deps))
	e.Use(middleware.Locale())
	e.Use(middleware.CSRF(cfg.IsProduction()))

	// Static files
	e.Static("/static", cfg.StaticDir)

	// Public routes
	e.GET("/", handlers.LandingHandler)
	e.GET("/sitemap.xml", handlers.GetSitemapHandler)
	e.GET("/robots.txt", handlers.RobotsHandler)
	e.GET("/contact/form", handlers.ContactFormHandler)
	e.POST("/contact", handlers.ContactSubmitHandler, middleware.ContactRateLimiter.Middleware())
	e.POST("/api/contact", handlers.ContactAPIHandler, middleware.ContactRateLimiter.Middleware())

	// Admin login (redirects to the dashboard when already signed in)
	login := e.Group("/admin/login")
	login.Use(middleware.RedirectIfAdmin(handlers.DashboardPath))
	{
		login.GET("", handlers.LoginHandler)
		login.POST("", handlers.LoginPostHandler, middleware.LoginRateLimiter.Middleware())
	}

	// Admin routes
	admin := e.Group("/admin")
	admin.Use(middleware.RequireAdmin(handlers.AdminLoadingHandler))
	admin.Use(middleware.AuditContext())
	{
		admin.GET("", handlers.DashboardHandler)
		admin.POST("/logout", handlers.LogoutHandler)
		admin.GET("/submissions", handlers.SubmissionsHandler)
		admin.POST("/submissions/:id/read", handlers.MarkReadHandler)
		admin.DELETE("/submissions/:id", handlers.DeleteSubmissionHandler)
		admin.GET("/export.xlsx", handlers.ExportHandler)
	}

	// Development-only routes
	if !cfg.IsProduction() {
		e.GET("/debug/config", handlers.DebugConfigHandler)
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("[WARNING] Server shutdown failed: %v", err)
	}
}

// connectDatabase opens the database, migrates it and attaches it to handle.
// It retries until it succeeds.
func connectDatabase(cfg *config.Config, handle *db.Handle) {
	opts := db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}

	backoff := time.Second
	for {
		conn, err := db.Open(opts)
		if err == nil {
			err = db.AutoMigrate(conn,
				&models.ContactSubmission{},
				&models.AdminUser{},
				&models.Session{},
				&models.AuditLog{},
			)
			if err == nil {
				handle.Attach(conn)
				log.Println("[INFO] Database ready")
				return
			}
			if sqlDB, dbErr := conn.DB(); dbErr == nil {
				sqlDB.Close()
			}
		}

		log.Printf("[WARNING] Database not ready, retrying in %s: %v", backoff, err)
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
