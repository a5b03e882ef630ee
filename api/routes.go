package api

import (
	"github.com/go-chi/chi/v5"
)

// publicEndpoints is reported by the health check.
var publicEndpoints = []string{
	"GET /api/v1/health",
	"GET /api/v1/projects",
	"GET /api/v1/projects/featured",
	"GET /api/v1/projects/{slug}",
	"GET /api/v1/technologies",
	"GET /api/v1/tech-stack",
	"GET /api/v1/highlights",
	"GET /api/v1/metadata",
	"GET /api/v1/stats",
	"GET /api/v1/blog/posts",
	"GET /api/v1/blog/posts/{slug}",
	"GET /api/v1/blog/categories",
	"GET /api/v1/blog/recent",
	"POST /api/v1/contact",
}

// setupPublicRoutes registers the read paths and the contact form. None require authentication.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.siteHandler.health())
	r.Get("/metadata", handlers.siteHandler.getMetadata())
	r.Get("/stats", handlers.siteHandler.getStats())

	r.Get("/projects", handlers.projectHandler.listProjects())
	r.Get("/projects/featured", handlers.projectHandler.featuredProjects())
	r.Get("/projects/{slug}", handlers.projectHandler.viewProject())

	r.Get("/technologies", handlers.techHandler.listTechnologies())
	r.Get("/tech-stack", handlers.techHandler.techStack())
	r.Get("/highlights", handlers.highlightHandler.listHighlights())

	r.Get("/blog/posts", handlers.blogPostHandler.listPosts())
	r.Get("/blog/posts/{slug}", handlers.blogPostHandler.viewPost())
	r.Get("/blog/categories", handlers.blogPostHandler.categoryCounts())
	r.Get("/blog/recent", handlers.blogPostHandler.recentPosts())

	r.Post("/contact", handlers.contactHandler.submit())
	r.Post("/core/contact", handlers.contactHandler.submit())
}

// setupAdminRoutes registers the content management API. Everything but the token exchange
// requires a bearer token.
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Post("/token", handlers.tokenHandler.createToken())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate, authMiddleware.auditWrites)

		r.Get("/projects", handlers.projectHandler.adminListProjects())
		r.Post("/projects", handlers.projectHandler.createProject())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		r.Put("/projects/{projectID}/detail", handlers.projectHandler.upsertDetail())

		r.Get("/blog/posts", handlers.blogPostHandler.adminListPosts())
		r.Post("/blog/posts", handlers.blogPostHandler.createPost())
		r.Get("/blog/posts/{postID}", handlers.blogPostHandler.getPost())
		r.Put("/blog/posts/{postID}", handlers.blogPostHandler.updatePost())
		r.Delete("/blog/posts/{postID}", handlers.blogPostHandler.deletePost())

		r.Get("/tech-categories", handlers.techHandler.listCategories())
		r.Post("/tech-categories", handlers.techHandler.createCategory())
		r.Put("/tech-categories/{categoryID}", handlers.techHandler.updateCategory())
		r.Delete("/tech-categories/{categoryID}", handlers.techHandler.deleteCategory())

		r.Post("/technologies", handlers.techHandler.createTechnology())
		r.Get("/technologies/{technologyID}", handlers.techHandler.getTechnology())
		r.Put("/technologies/{technologyID}", handlers.techHandler.updateTechnology())
		r.Delete("/technologies/{technologyID}", handlers.techHandler.deleteTechnology())

		r.Get("/highlights", handlers.highlightHandler.listHighlights())
		r.Post("/highlights", handlers.highlightHandler.createHighlight())
		r.Put("/highlights/{highlightID}", handlers.highlightHandler.updateHighlight())
		r.Delete("/highlights/{highlightID}", handlers.highlightHandler.deleteHighlight())

		r.Get("/site-configuration", handlers.siteHandler.getSiteConfiguration())
		r.Post("/site-configuration", handlers.siteHandler.createSiteConfiguration())
		r.Put("/site-configuration", handlers.siteHandler.updateSiteConfiguration())
		r.Delete("/site-configuration", handlers.siteHandler.deleteSiteConfiguration())

		r.Get("/contacts", handlers.contactHandler.listSubmissions())
		r.Get("/contacts/{submissionID}", handlers.contactHandler.getSubmission())
		r.Patch("/contacts/{submissionID}", handlers.contactHandler.updateFlags())

		r.Post("/media", handlers.mediaHandler.upload())
	})
}
