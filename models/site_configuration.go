package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
)

const siteConfigurationEntity = "site configuration"

// SiteConfiguration is the single row of site-wide metadata and counters.
// SingletonKey is always 1 and carries a unique index, so a second row cannot exist.
type SiteConfiguration struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SingletonKey         int       `json:"-" gorm:"not null;uniqueIndex"`
	Name                 string    `json:"name" gorm:"type:varchar(100);not null"`
	Tagline              string    `json:"tagline" gorm:"type:varchar(200);not null"`
	Bio                  string    `json:"bio" gorm:"type:text;not null"`
	Location             string    `json:"location" gorm:"type:varchar(100);not null"`
	Email                string    `json:"email" gorm:"type:varchar(254);not null"`
	Phone                string    `json:"phone" gorm:"type:varchar(20);not null"`
	GithubURL            string    `json:"github_url" gorm:"type:text;not null"`
	LinkedinURL          string    `json:"linkedin_url" gorm:"type:text;not null"`
	TwitterURL           string    `json:"twitter_url" gorm:"type:text;not null"`
	CalendarURL          string    `json:"calendar_url" gorm:"type:text;not null"`
	ResumeURL            *string   `json:"resume_url" gorm:"type:text"`
	ProfileImage         *string   `json:"profile_image" gorm:"type:text"`
	MetaDescription      string    `json:"meta_description" gorm:"type:varchar(160);not null"`
	MetaKeywords         string    `json:"meta_keywords" gorm:"type:varchar(255);not null"`
	YearsExperience      int       `json:"years_experience" gorm:"not null"`
	ProjectsCompleted    int       `json:"projects_completed" gorm:"not null"`
	TechnologiesMastered int       `json:"technologies_mastered" gorm:"not null"`
	CoffeeConsumed       int       `json:"coffee_consumed" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultSiteConfiguration is served when no configuration row exists yet.
func DefaultSiteConfiguration() SiteConfiguration {
	return SiteConfiguration{
		Name:                 "Nikhil Dodda",
		Tagline:              "Applied AI Engineer",
		Bio:                  "Building intelligent applications that solve real business problems.",
		Location:             "DMV Metro Area, USA",
		Email:                "contact@example.com",
		MetaDescription:      "Applied AI Engineer specializing in LLM applications, RAG systems, and cloud-native AI solutions.",
		MetaKeywords:         "AI Engineer, Machine Learning, LLM, RAG, Python, AWS",
		YearsExperience:      2,
		ProjectsCompleted:    5,
		TechnologiesMastered: 20,
		CoffeeConsumed:       1000,
	}
}

func (s *SiteConfiguration) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	s.SingletonKey = 1
	return nil
}

func (s *SiteConfiguration) BeforeDelete(tx *gorm.DB) error {
	return errs.NewOperationNotPermitted("delete", siteConfigurationEntity)
}

func (s *SiteConfiguration) Validate() map[string]string {
	problems := map[string]string{}
	if s.Name == "" {
		problems["name"] = "required"
	}
	if s.Email != "" && !looksLikeEmail(s.Email) {
		problems["email"] = "must be a valid email address"
	}
	if len([]rune(s.MetaDescription)) > MetaDescriptionMaxLength {
		problems["meta_description"] = "must be at most 160 characters"
	}
	for field, v := range map[string]int{
		"years_experience":      s.YearsExperience,
		"projects_completed":    s.ProjectsCompleted,
		"technologies_mastered": s.TechnologiesMastered,
		"coffee_consumed":       s.CoffeeConsumed,
	} {
		if v < 0 {
			problems[field] = "must not be negative"
		}
	}
	return problems
}
