package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CareerHighlight is a role or milestone on the timeline. DateRange is a free-text label.
type CareerHighlight struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string                      `json:"title" gorm:"type:varchar(200);not null"`
	Organization string                      `json:"organization" gorm:"type:varchar(200);not null"`
	DateRange    string                      `json:"date_range" gorm:"type:varchar(100);not null"`
	Description  string                      `json:"description" gorm:"type:text;not null"`
	Metrics      datatypes.JSONSlice[string] `json:"metrics" gorm:"not null"`
	IsCurrent    bool                        `json:"is_current" gorm:"not null"`
	Order        int                         `json:"order" gorm:"column:display_order;not null"`
	Technologies []Technology                `json:"technologies" gorm:"many2many:career_highlight_technologies;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func (h *CareerHighlight) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

func (h *CareerHighlight) BeforeSave(tx *gorm.DB) error {
	if h.Metrics == nil {
		h.Metrics = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (h *CareerHighlight) Validate() map[string]string {
	problems := map[string]string{}
	h.Title = strings.TrimSpace(h.Title)
	h.Organization = strings.TrimSpace(h.Organization)
	if h.Title == "" {
		problems["title"] = "required"
	}
	if h.Organization == "" {
		problems["organization"] = "required"
	}
	if strings.TrimSpace(h.DateRange) == "" {
		problems["date_range"] = "required"
	}
	return problems
}
