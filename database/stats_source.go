package database

import (
	"context"

	"github.com/rpupo63/portfolio-content-backend/models"
)

// The methods below let Database feed the site statistics aggregate.

func (d Database) CountPublishedProjects(ctx context.Context) (int64, error) {
	return d.projectRepo.CountPublished(ctx)
}

func (d Database) CountTechnologies(ctx context.Context) (int64, error) {
	return d.technologyRepo.Count(ctx)
}

func (d Database) CountPublishedPosts(ctx context.Context) (int64, error) {
	return d.blogPostRepo.CountPublished(ctx)
}

func (d Database) TotalPostViews(ctx context.Context) (int64, error) {
	return d.blogPostRepo.TotalViews(ctx)
}

func (d Database) SiteConfiguration(ctx context.Context) (*models.SiteConfiguration, error) {
	return d.siteConfigurationRepo.GetOrDefault(ctx)
}
