package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BlogCategory string

const (
	CategoryAITrends  BlogCategory = "ai-trends"
	CategoryTechnical BlogCategory = "technical"
	CategoryIndustry  BlogCategory = "industry"
	CategoryTutorial  BlogCategory = "tutorial"
	CategoryOpinion   BlogCategory = "opinion"
)

// BlogCategories lists every category in display order.
var BlogCategories = []BlogCategory{
	CategoryAITrends,
	CategoryTechnical,
	CategoryIndustry,
	CategoryTutorial,
	CategoryOpinion,
}

var blogCategoryLabels = map[BlogCategory]string{
	CategoryAITrends:  "AI Trends",
	CategoryTechnical: "Technical Deep Dive",
	CategoryIndustry:  "Industry Insights",
	CategoryTutorial:  "Tutorial",
	CategoryOpinion:   "Opinion",
}

func (c BlogCategory) Valid() bool {
	_, ok := blogCategoryLabels[c]
	return ok
}

func (c BlogCategory) Label() string {
	return blogCategoryLabels[c]
}

// BlogPost is an article. ReadingTime and, when left blank, MetaDescription are
// recomputed on every save.
type BlogPost struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title           string                      `json:"title" gorm:"type:varchar(200);not null"`
	Slug            string                      `json:"slug" gorm:"type:varchar(250);not null;uniqueIndex"`
	Excerpt         string                      `json:"excerpt" gorm:"type:varchar(500);not null"`
	Content         string                      `json:"content" gorm:"type:text;not null"`
	FeaturedImage   *string                     `json:"featured_image" gorm:"type:text"`
	Category        BlogCategory                `json:"category" gorm:"type:varchar(50);not null;index"`
	Tags            datatypes.JSONSlice[string] `json:"tags" gorm:"not null"`
	ReadingTime     int                         `json:"reading_time" gorm:"not null"`
	IsPublished     bool                        `json:"is_published" gorm:"not null;index"`
	IsFeatured      bool                        `json:"is_featured" gorm:"not null"`
	PublishedDate   time.Time                   `json:"published_date" gorm:"not null;index"`
	UpdatedDate     time.Time                   `json:"updated_date" gorm:"autoUpdateTime"`
	Views           int64                       `json:"views" gorm:"not null"`
	MetaTitle       string                      `json:"meta_title" gorm:"type:varchar(60);not null"`
	MetaDescription string                      `json:"meta_description" gorm:"type:varchar(160);not null"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.Slug == "" {
		b.Slug = Slugify(b.Title)
	}
	if b.PublishedDate.IsZero() {
		b.PublishedDate = time.Now().UTC()
	}
	return nil
}

func (b *BlogPost) BeforeSave(tx *gorm.DB) error {
	b.ApplyDerivedFields()
	return nil
}

// ApplyDerivedFields refreshes the reading time and fills a blank meta description
// from the excerpt.
func (b *BlogPost) ApplyDerivedFields() {
	b.ReadingTime = ReadingTime(b.Content)
	if strings.TrimSpace(b.MetaDescription) == "" {
		b.MetaDescription = DefaultMetaDescription(b.Excerpt)
	}
	if b.Tags == nil {
		b.Tags = datatypes.JSONSlice[string]{}
	}
}

func (b *BlogPost) Validate() map[string]string {
	problems := map[string]string{}
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		problems["title"] = "required"
	}
	if b.Slug != "" && Slugify(b.Slug) != b.Slug {
		problems["slug"] = "must contain only lowercase letters, digits and hyphens"
	}
	if strings.TrimSpace(b.Excerpt) == "" {
		problems["excerpt"] = "required"
	} else if len([]rune(b.Excerpt)) > 500 {
		problems["excerpt"] = "must be at most 500 characters"
	}
	if strings.TrimSpace(b.Content) == "" {
		problems["content"] = "required"
	}
	if b.Category == "" {
		b.Category = CategoryTechnical
	}
	if !b.Category.Valid() {
		problems["category"] = "must be one of ai-trends, technical, industry, tutorial, opinion"
	}
	if len([]rune(b.MetaTitle)) > 60 {
		problems["meta_title"] = "must be at most 60 characters"
	}
	if len([]rune(b.MetaDescription)) > MetaDescriptionMaxLength {
		problems["meta_description"] = "must be at most 160 characters"
	}
	return problems
}
