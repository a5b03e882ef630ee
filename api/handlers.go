package api

import (
	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, router router, auth adminAuth, contactCfg services.ContactConfig) *routeHandlers {
	return &routeHandlers{
		projectHandler:   newProjectHandler(database.ProjectRepo()),
		blogPostHandler:  newBlogPostHandler(database.BlogPostRepo()),
		techHandler:      newTechHandler(database.TechCategoryRepo(), database.TechnologyRepo()),
		highlightHandler: newHighlightHandler(database.CareerHighlightRepo()),
		siteHandler: newSiteHandler(
			database.SiteConfigurationRepo(),
			services.NewStatsService(database),
			database,
			router.startupTime,
		),
		contactHandler: newContactHandler(
			services.NewContactIntake(database.ContactSubmissionRepo(), router.notifier, contactCfg),
			database.ContactSubmissionRepo(),
		),
		mediaHandler: newMediaHandler(router.mediaStore),
		tokenHandler: newTokenHandler(auth),
	}
}
