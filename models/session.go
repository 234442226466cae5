package models

import (
	"time"
)

type Session struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AdminUserID string    `gorm:"type:varchar(36);not null;index" json:"admin_user_id"`
	TokenHash   string    `gorm:"uniqueIndex;not null;type:varchar(64)" json:"-"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	IPAddress   string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`

	// Token is the opaque client credential. It is only populated right after
	// sign-in and is never persisted.
	Token string `gorm:"-" json:"-"`

	// Relationships
	AdminUser AdminUser `gorm:"foreignKey:AdminUserID" json:"-"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Email returns the signed-in admin's email
func (s *Session) Email() string {
	return s.AdminUser.Email
}
