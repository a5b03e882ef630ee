package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TechCategory groups technologies for display. Deleting a category deletes
// every technology in it.
type TechCategory struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string       `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Order        int          `json:"order" gorm:"column:display_order;not null"`
	CreatedAt    time.Time    `json:"created_at"`
	Technologies []Technology `json:"technologies,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *TechCategory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c *TechCategory) Validate() map[string]string {
	problems := map[string]string{}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		problems["name"] = "required"
	}
	return problems
}
