package services

import (
	"agency_site_go/db"
	"agency_site_go/models"
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AuditContext identifies the admin and client behind an action
type AuditContext struct {
	AdminUserID string
	AdminEmail  string
	IPAddress   string
	UserAgent   string
}

// AuditContextFromSession builds an AuditContext for a signed-in admin
func AuditContextFromSession(session *models.Session, meta ClientMeta) AuditContext {
	actx := AuditContext{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent}
	if session != nil {
		actx.AdminUserID = session.AdminUserID
		actx.AdminEmail = session.Email()
	}
	return actx
}

// RecordAuditEvent writes one audit entry
func RecordAuditEvent(ctx context.Context, conn *gorm.DB, actx AuditContext, action models.AuditAction, resourceType, resourceID, description string) error {
	entry := models.AuditLog{
		AdminUserID:  ptrIfNotEmpty(actx.AdminUserID),
		AdminEmail:   actx.AdminEmail,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Description:  description,
		IPAddress:    actx.IPAddress,
		UserAgent:    actx.UserAgent,
	}

	if err := conn.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// LogAuditEvent records an audit entry in the background. It is a no-op while
// the backend is not attached.
func LogAuditEvent(handle *db.Handle, actx AuditContext, action models.AuditAction, resourceType, resourceID, description string) {
	conn, err := handle.Conn()
	if err != nil {
		log.Printf("[AUDIT] Skipped %s on %s %s: %v", action, resourceType, resourceID, err)
		return
	}

	go func() {
		if err := RecordAuditEvent(context.Background(), conn, actx, action, resourceType, resourceID, description); err != nil {
			log.Printf("[AUDIT] %v", err)
		}
	}()
}

// RecentAuditLogs returns the newest audit entries
func RecentAuditLogs(ctx context.Context, conn *gorm.DB, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := conn.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
