package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionLogin    AuditAction = "LOGIN"    // Admin signed in
	AuditActionLogout   AuditAction = "LOGOUT"   // Admin signed out
	AuditActionMarkRead AuditAction = "MARK_READ"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionExport   AuditAction = "EXPORT" // Submissions downloaded as XLSX
)

// AuditLog represents an immutable record of an admin operation
type AuditLog struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	// Actor identification (denormalized for historical accuracy)
	AdminUserID *string `gorm:"type:varchar(36);index:idx_audit_user" json:"admin_user_id,omitempty"`
	AdminEmail  string  `gorm:"not null" json:"admin_email"`

	// Target resource
	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   string `gorm:"index:idx_audit_resource" json:"resource_id"`

	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	// Request metadata (optional)
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
