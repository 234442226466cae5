package services

import (
	"agency_site_go/db"
	"agency_site_go/models"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
	// MaxFailedLogins locks the account once reached
	MaxFailedLogins = 5
	// LockoutDuration is how long a locked account stays locked
	LockoutDuration = 15 * time.Minute
)

// ClientMeta describes the client a session is created for
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// IdentityProvider authenticates admins and resolves opaque session tokens.
type IdentityProvider interface {
	// Ready reports whether the provider can serve requests yet
	Ready() bool
	SignInWithEmailPassword(ctx context.Context, email, password string, meta ClientMeta) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	Lookup(ctx context.Context, token string) (*models.Session, error)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// dummyHash is compared against when the email is unknown so both paths cost one bcrypt check
var dummyHash = func() string {
	hash, err := HashPassword("dummy_password_for_timing_mitigation")
	if err != nil {
		return "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t"
	}
	return hash
}()

// DBIdentityProvider keeps admin users and sessions in the SQL backend
type DBIdentityProvider struct {
	handle *db.Handle
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDBIdentityProvider creates a provider. secret keys the token hashes stored
// in the sessions table.
func NewDBIdentityProvider(handle *db.Handle, secret string) *DBIdentityProvider {
	return &DBIdentityProvider{
		handle: handle,
		secret: []byte(secret),
		ttl:    DefaultSessionDuration,
		now:    time.Now,
	}
}

// Ready reports whether the backend connection is attached
func (p *DBIdentityProvider) Ready() bool {
	return p.handle.IsReady()
}

func (p *DBIdentityProvider) conn(ctx context.Context, op string) (*gorm.DB, error) {
	conn, err := p.handle.Conn()
	if err != nil {
		return nil, &AuthError{Op: op, Err: ErrProviderUnavailable}
	}
	return conn.WithContext(ctx), nil
}

// HashToken returns the value stored for a session token
func (p *DBIdentityProvider) HashToken(token string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignInWithEmailPassword checks the credentials and opens a new session.
// Unknown email, wrong password and inactive account all report
// ErrInvalidCredentials.
func (p *DBIdentityProvider) SignInWithEmailPassword(ctx context.Context, email, password string, meta ClientMeta) (*models.Session, error) {
	conn, err := p.conn(ctx, "sign-in")
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	now := p.now()

	var user models.AdminUser
	if err := conn.Where("email = ?", email).First(&user).Error; err != nil {
		VerifyPassword(dummyHash, password)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AuthError{Op: "sign-in", Err: ErrInvalidCredentials}
		}
		return nil, &AuthError{Op: "sign-in", Err: fmt.Errorf("failed to load admin: %w", err)}
	}

	if user.IsLocked(now) {
		return nil, &AuthError{Op: "sign-in", Err: ErrAccountLocked}
	}

	if !VerifyPassword(user.Password, password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= MaxFailedLogins {
			lockoutTime := now.Add(LockoutDuration)
			user.LockoutUntil = &lockoutTime
			user.FailedLoginAttempts = 0
			LogSecurityEvent("ACCOUNT_LOCKED", user.Email, fmt.Sprintf("IP: %s", meta.IPAddress))
		}
		if err := conn.Save(&user).Error; err != nil {
			log.Printf("[WARNING] Failed to record failed login for %s: %v", user.Email, err)
		}
		return nil, &AuthError{Op: "sign-in", Err: ErrInvalidCredentials}
	}

	if !user.IsActive {
		return nil, &AuthError{Op: "sign-in", Err: ErrInvalidCredentials}
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, &AuthError{Op: "sign-in", Err: err}
	}

	session := &models.Session{
		ID:          uuid.New().String(),
		AdminUserID: user.ID,
		TokenHash:   p.HashToken(token),
		ExpiresAt:   now.Add(p.ttl),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	if err := conn.Create(session).Error; err != nil {
		return nil, &AuthError{Op: "sign-in", Err: fmt.Errorf("failed to create session: %w", err)}
	}

	user.FailedLoginAttempts = 0
	user.LockoutUntil = nil
	user.LastLoginAt = &now
	if err := conn.Save(&user).Error; err != nil {
		log.Printf("[WARNING] Failed to update last login for %s: %v", user.Email, err)
	}

	session.Token = token
	session.AdminUser = user
	return session, nil
}

// SignOut deletes the session behind token. Unknown tokens are not an error.
func (p *DBIdentityProvider) SignOut(ctx context.Context, token string) error {
	conn, err := p.conn(ctx, "sign-out")
	if err != nil {
		return err
	}

	result := conn.Where("token_hash = ?", p.HashToken(token)).Delete(&models.Session{})
	if result.Error != nil {
		return &AuthError{Op: "sign-out", Err: fmt.Errorf("failed to delete session: %w", result.Error)}
	}
	return nil
}

// Lookup resolves a token to its live session. Expired sessions are removed.
func (p *DBIdentityProvider) Lookup(ctx context.Context, token string) (*models.Session, error) {
	conn, err := p.conn(ctx, "lookup")
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, &AuthError{Op: "lookup", Err: ErrSessionInvalid}
	}

	var session models.Session
	err = conn.Preload("AdminUser").
		Where("token_hash = ?", p.HashToken(token)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AuthError{Op: "lookup", Err: ErrSessionInvalid}
		}
		return nil, &AuthError{Op: "lookup", Err: fmt.Errorf("failed to validate session: %w", err)}
	}

	if p.now().After(session.ExpiresAt) {
		conn.Delete(&session)
		return nil, &AuthError{Op: "lookup", Err: ErrSessionInvalid}
	}

	if !session.AdminUser.IsActive {
		return nil, &AuthError{Op: "lookup", Err: ErrSessionInvalid}
	}

	session.Token = token
	return &session, nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func (p *DBIdentityProvider) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	conn, err := p.conn(ctx, "cleanup")
	if err != nil {
		return 0, err
	}

	result := conn.Where("expires_at < ?", p.now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[INFO] Cleaned up %d expired sessions", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// CreateAdminUser stores a new active admin with a hashed password
func CreateAdminUser(ctx context.Context, conn *gorm.DB, name, email, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if err := conn.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return user, nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, subject, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, subject, details)
}
