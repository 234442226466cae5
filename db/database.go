package db

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotInitialized is returned by Handle.Conn before a connection is attached.
var ErrNotInitialized = errors.New("database not initialized")

// Options selects the backend. A non-empty TursoURL wins over Path.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

// Handle owns the GORM connection. It starts empty and becomes ready once
// Attach is called, so the HTTP server can start before the backend is up.
type Handle struct {
	mu    sync.RWMutex
	conn  *gorm.DB
	ready chan struct{}
}

// NewHandle returns a handle that reports ErrNotInitialized until Attach.
func NewHandle() *Handle {
	return &Handle{ready: make(chan struct{})}
}

// Attach stores conn and marks the handle ready. Only the first call counts.
func (h *Handle) Attach(conn *gorm.DB) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		return
	}
	h.conn = conn
	close(h.ready)
}

// Conn returns the attached connection or ErrNotInitialized.
func (h *Handle) Conn() (*gorm.DB, error) {
	if h == nil {
		return nil, ErrNotInitialized
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.conn == nil {
		return nil, ErrNotInitialized
	}
	return h.conn, nil
}

// IsReady reports whether a connection is attached.
func (h *Handle) IsReady() bool {
	_, err := h.Conn()
	return err == nil
}

// Ready is closed once a connection is attached.
func (h *Handle) Ready() <-chan struct{} {
	return h.ready
}

// Close closes the attached connection, if any.
func (h *Handle) Close() error {
	conn, err := h.Conn()
	if err != nil {
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// Open connects to local SQLite (WAL mode) or to a remote Turso database
func Open(opts Options) (*gorm.DB, error) {
	// Determine log level based on environment
	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if opts.TursoURL != "" {
		dsn := opts.TursoURL
		if opts.TursoToken != "" {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "authToken=" + opts.TursoToken
		}

		conn, err := gorm.Open(sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        dsn,
		}), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to turso database: %w", err)
		}

		log.Println("Database connection established (Turso/libSQL)")
		return conn, nil
	}

	// Enable WAL mode for better concurrency support
	dsn := opts.Path + "?_journal_mode=WAL"

	conn, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established (WAL mode enabled)")
	return conn, nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(conn *gorm.DB, models ...interface{}) error {
	if conn == nil {
		return ErrNotInitialized
	}

	err := conn.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}
