package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-content-backend/models"
)

// StatsSource supplies the live counts behind the site statistics.
type StatsSource interface {
	CountPublishedProjects(ctx context.Context) (int64, error)
	CountTechnologies(ctx context.Context) (int64, error)
	CountPublishedPosts(ctx context.Context) (int64, error)
	TotalPostViews(ctx context.Context) (int64, error)
	SiteConfiguration(ctx context.Context) (*models.SiteConfiguration, error)
}

type SiteStats struct {
	YearsExperience      int   `json:"years_experience"`
	ProjectsCompleted    int64 `json:"projects_completed"`
	TechnologiesMastered int64 `json:"technologies_mastered"`
	BlogPostsWritten     int64 `json:"blog_posts_written"`
	TotalBlogViews       int64 `json:"total_blog_views"`
	CoffeeConsumed       int   `json:"coffee_consumed"`
}

type StatsService struct {
	source StatsSource
}

func NewStatsService(source StatsSource) *StatsService {
	return &StatsService{source: source}
}

// Compute runs the aggregate queries concurrently. Project and technology figures never
// drop below the configured vanity numbers.
func (s *StatsService) Compute(ctx context.Context) (SiteStats, error) {
	var (
		projects, techs, posts, views int64
		cfg                           *models.SiteConfiguration
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.source.CountPublishedProjects(ctx)
		return err
	})
	g.Go(func() (err error) {
		techs, err = s.source.CountTechnologies(ctx)
		return err
	})
	g.Go(func() (err error) {
		posts, err = s.source.CountPublishedPosts(ctx)
		return err
	})
	g.Go(func() (err error) {
		views, err = s.source.TotalPostViews(ctx)
		return err
	})
	g.Go(func() (err error) {
		cfg, err = s.source.SiteConfiguration(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return SiteStats{}, err
	}

	return SiteStats{
		YearsExperience:      cfg.YearsExperience,
		ProjectsCompleted:    max(projects, int64(cfg.ProjectsCompleted)),
		TechnologiesMastered: max(techs, int64(cfg.TechnologiesMastered)),
		BlogPostsWritten:     posts,
		TotalBlogViews:       views,
		CoffeeConsumed:       cfg.CoffeeConsumed,
	}, nil
}
