package models

import (
	"time"
)

// Service categories offered in the contact form
const (
	ServiceShopify      = "shopify"
	ServiceWebApp       = "webapp"
	ServiceAI           = "ai"
	ServiceMarketing    = "marketing"
	ServiceSEO          = "seo"
	ServiceOptimization = "optimization"
)

// ServiceCategories lists the selectable services in display order
var ServiceCategories = []string{
	ServiceShopify,
	ServiceWebApp,
	ServiceAI,
	ServiceMarketing,
	ServiceSEO,
	ServiceOptimization,
}

// ContactSubmission is one stored contact-form entry.
// ID and Timestamp are assigned by the repository and never change afterwards.
type ContactSubmission struct {
	ID string `gorm:"type:varchar(36);primarykey" json:"id"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null;index" json:"email"`
	Company string `gorm:"not null;default:''" json:"company"`
	Phone   string `gorm:"not null;default:''" json:"phone"`
	Service string `gorm:"not null;default:''" json:"service"`
	Message string `gorm:"type:text;not null" json:"message"`

	Timestamp time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
}

// TableName specifies the table name for ContactSubmission model
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

// ContactFields is what a visitor may supply. It deliberately has no ID,
// Timestamp or Read so callers cannot set them.
type ContactFields struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Company string `json:"company" form:"company"`
	Phone   string `json:"phone" form:"phone"`
	Service string `json:"service" form:"service"`
	Message string `json:"message" form:"message"`
}

// IsValidService checks if the service is one of the known categories
func IsValidService(service string) bool {
	for _, s := range ServiceCategories {
		if s == service {
			return true
		}
	}
	return false
}
