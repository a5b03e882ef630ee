package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/models"
)

type Database struct {
	db                    *gorm.DB
	techCategoryRepo      *TechCategoryRepo
	technologyRepo        *TechnologyRepo
	projectRepo           *ProjectRepo
	blogPostRepo          *BlogPostRepo
	careerHighlightRepo   *CareerHighlightRepo
	siteConfigurationRepo *SiteConfigurationRepo
	contactSubmissionRepo *ContactSubmissionRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                    db,
		techCategoryRepo:      NewTechCategoryRepo(db),
		technologyRepo:        NewTechnologyRepo(db),
		projectRepo:           NewProjectRepo(db),
		blogPostRepo:          NewBlogPostRepo(db),
		careerHighlightRepo:   NewCareerHighlightRepo(db),
		siteConfigurationRepo: NewSiteConfigurationRepo(db),
		contactSubmissionRepo: NewContactSubmissionRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) TechCategoryRepo() *TechCategoryRepo {
	return d.techCategoryRepo
}

func (d Database) TechnologyRepo() *TechnologyRepo {
	return d.technologyRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) CareerHighlightRepo() *CareerHighlightRepo {
	return d.careerHighlightRepo
}

func (d Database) SiteConfigurationRepo() *SiteConfigurationRepo {
	return d.siteConfigurationRepo
}

func (d Database) ContactSubmissionRepo() *ContactSubmissionRepo {
	return d.contactSubmissionRepo
}

// Migrate creates or updates every table.
func (d Database) Migrate() error {
	return models.Migrate(d.db)
}

// Ping reports whether the database answers.
func (d Database) Ping(ctx context.Context) error {
	return d.db.WithContext(ctx).Exec("SELECT 1").Error
}

func (d Database) Close() error {
	return Close(d.db)
}
