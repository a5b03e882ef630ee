package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultTechnologyColor = "#3B82F6"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var proficiencyLabels = map[int]string{
	1: "Beginner",
	2: "Familiar",
	3: "Proficient",
	4: "Advanced",
	5: "Expert",
}

// ProficiencyLabel returns the display label for a 1-5 proficiency level.
func ProficiencyLabel(level int) string {
	return proficiencyLabels[level]
}

type Technology struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string        `json:"name" gorm:"type:varchar(100);not null;index"`
	CategoryID  uuid.UUID     `json:"category_id" gorm:"type:uuid;not null;index"`
	Category    *TechCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
	Proficiency int           `json:"proficiency" gorm:"not null"`
	IconURL     string        `json:"icon_url" gorm:"type:text;not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Color       string        `json:"color" gorm:"type:varchar(7);not null"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (t *Technology) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (t *Technology) BeforeSave(tx *gorm.DB) error {
	if t.Color == "" {
		t.Color = DefaultTechnologyColor
	}
	if t.Proficiency == 0 {
		t.Proficiency = 3
	}
	return nil
}

func (t *Technology) Validate() map[string]string {
	problems := map[string]string{}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		problems["name"] = "required"
	}
	if t.CategoryID == uuid.Nil {
		problems["category_id"] = "required"
	}
	if t.Proficiency != 0 && ProficiencyLabel(t.Proficiency) == "" {
		problems["proficiency"] = "must be between 1 and 5"
	}
	if t.Color != "" && !hexColorPattern.MatchString(t.Color) {
		problems["color"] = "must be a hex color like #3B82F6"
	}
	return problems
}

// ProficiencyLabel returns the label for the technology's proficiency.
func (t Technology) ProficiencyLabel() string {
	return ProficiencyLabel(t.Proficiency)
}
