package services

import (
	"agency_site_go/db"
	"agency_site_go/models"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceDB returns an attached handle over a private in-memory database
func setupServiceDB(t *testing.T) (*db.Handle, *gorm.DB) {
	t.Helper()

	dbName := "mem_" + uuid.New().String()
	conn, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.ContactSubmission{},
		&models.AdminUser{},
		&models.Session{},
		&models.AuditLog{},
	))

	handle := db.NewHandle()
	handle.Attach(conn)
	t.Cleanup(func() { _ = handle.Close() })

	return handle, conn
}

// mockSubmissionRepository is an in-memory stub with per-method overrides
type mockSubmissionRepository struct {
	createFunc   func(ctx context.Context, fields models.ContactFields) (string, error)
	listFunc     func(ctx context.Context) ([]models.ContactSubmission, error)
	markReadFunc func(ctx context.Context, id string) error
	deleteFunc   func(ctx context.Context, id string) error

	createCalls []models.ContactFields
}

func (m *mockSubmissionRepository) Create(ctx context.Context, fields models.ContactFields) (string, error) {
	m.createCalls = append(m.createCalls, fields)
	if m.createFunc != nil {
		return m.createFunc(ctx, fields)
	}
	return "generated-id", nil
}

func (m *mockSubmissionRepository) List(ctx context.Context) ([]models.ContactSubmission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) MarkRead(ctx context.Context, id string) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return nil
}

func (m *mockSubmissionRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockIdentityProvider lets tests script provider readiness and responses
type mockIdentityProvider struct {
	ready      bool
	signInFunc func(ctx context.Context, email, password string, meta ClientMeta) (*models.Session, error)
	signOutErr error
	lookupFunc func(ctx context.Context, token string) (*models.Session, error)

	signOutTokens []string
}

func (m *mockIdentityProvider) Ready() bool {
	return m.ready
}

func (m *mockIdentityProvider) SignInWithEmailPassword(ctx context.Context, email, password string, meta ClientMeta) (*models.Session, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password, meta)
	}
	return testSession("token-1", email), nil
}

func (m *mockIdentityProvider) SignOut(ctx context.Context, token string) error {
	m.signOutTokens = append(m.signOutTokens, token)
	return m.signOutErr
}

func (m *mockIdentityProvider) Lookup(ctx context.Context, token string) (*models.Session, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, token)
	}
	return nil, &AuthError{Op: "lookup", Err: ErrSessionInvalid}
}

func testSession(token, email string) *models.Session {
	return &models.Session{
		ID:          uuid.New().String(),
		AdminUserID: "admin-1",
		Token:       token,
		AdminUser:   models.AdminUser{ID: "admin-1", Email: email},
	}
}
