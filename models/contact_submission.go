package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null"`
	Company   string    `json:"company" gorm:"type:varchar(100);not null"`
	Subject   string    `json:"subject" gorm:"type:varchar(200);not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	IsRead    bool      `json:"is_read" gorm:"not null"`
	Replied   bool      `json:"replied" gorm:"not null"`
	IPAddress *string   `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent string    `json:"user_agent" gorm:"type:text;not null"`
}

func (c *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Normalize trims the user supplied fields.
func (c *ContactSubmission) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Company = strings.TrimSpace(c.Company)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
}

// Validate expects Normalize to have run.
func (c *ContactSubmission) Validate() map[string]string {
	problems := map[string]string{}
	if c.Name == "" {
		problems["name"] = "required"
	} else if len([]rune(c.Name)) > 100 {
		problems["name"] = "must be at most 100 characters"
	}
	if c.Email == "" {
		problems["email"] = "required"
	} else if !looksLikeEmail(c.Email) {
		problems["email"] = "must be a valid email address"
	}
	if len([]rune(c.Company)) > 100 {
		problems["company"] = "must be at most 100 characters"
	}
	if c.Subject == "" {
		problems["subject"] = "required"
	} else if len([]rune(c.Subject)) > 200 {
		problems["subject"] = "must be at most 200 characters"
	}
	if c.Message == "" {
		problems["message"] = "required"
	}
	return problems
}

// looksLikeEmail is a syntactic sanity check, not RFC validation.
func looksLikeEmail(s string) bool {
	return strings.Contains(s, "@")
}
