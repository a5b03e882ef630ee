package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry. Only published projects are visible to public readers.
type Project struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string         `json:"title" gorm:"type:varchar(200);not null"`
	Slug         string         `json:"slug" gorm:"type:varchar(250);not null;uniqueIndex"`
	Tagline      string         `json:"tagline" gorm:"type:varchar(300);not null"`
	Thumbnail    *string        `json:"thumbnail" gorm:"type:text"`
	HeroImage    *string        `json:"hero_image" gorm:"type:text"`
	Technologies []Technology   `json:"technologies" gorm:"many2many:project_technologies;constraint:OnDelete:CASCADE"`
	GithubURL    string         `json:"github_url" gorm:"type:text;not null"`
	LiveDemoURL  string         `json:"live_demo_url" gorm:"type:text;not null"`
	Priority     int            `json:"priority" gorm:"not null;index"`
	IsFeatured   bool           `json:"is_featured" gorm:"not null;index"`
	IsPublished  bool           `json:"is_published" gorm:"not null;index"`
	Views        int64          `json:"views" gorm:"not null"`
	Detail       *ProjectDetail `json:"details,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	return nil
}

func (p *Project) Validate() map[string]string {
	problems := map[string]string{}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		problems["title"] = "required"
	} else if len([]rune(p.Title)) > 200 {
		problems["title"] = "must be at most 200 characters"
	}
	if p.Slug != "" && Slugify(p.Slug) != p.Slug {
		problems["slug"] = "must contain only lowercase letters, digits and hyphens"
	}
	if len([]rune(p.Tagline)) > 300 {
		problems["tagline"] = "must be at most 300 characters"
	}
	return problems
}
