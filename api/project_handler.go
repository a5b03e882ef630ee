package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// projectRequest is the admin payload for a project. Technologies are linked by id; a nil
// list leaves the current links untouched on update.
type projectRequest struct {
	models.Project
	TechnologyIDs []uuid.UUID `json:"technology_ids"`
}

// listProjects returns one page of published projects
// @Summary List projects
// @Tags Projects
// @Param featured query bool false "Only featured projects"
// @Param tech query string false "Technology name substring"
// @Param search query string false "Title or tagline substring"
// @Param page query int false "Page number"
// @Router /projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		featured, err := boolParam(r, "featured")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		query := r.URL.Query()
		projects, err := h.projectRepo.ListPublished(r.Context(), database.ProjectFilter{
			Featured: featured,
			Tech:     strings.TrimSpace(query.Get("tech")),
			Search:   strings.TrimSpace(query.Get("search")),
			Page:     page,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// featuredProjects returns the top published featured projects
// @Summary Featured projects
// @Tags Projects
// @Router /projects/featured [get]
func (h projectHandler) featuredProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.Featured(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// viewProject returns a published project with its detail and counts the view
// @Summary Get project
// @Tags Projects
// @Param slug path string true "Project slug"
// @Router /projects/{slug} [get]
func (h projectHandler) viewProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projectRepo.ViewBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) adminListProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projects, err := h.projectRepo.ListAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a project. A blank slug is derived from the title.
// @Summary Create project
// @Tags Admin
// @Param project body projectRequest true "Project data"
// @Router /admin/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := req.Project
		project.ID = uuid.Nil
		project.Views = 0
		project.Technologies = nil
		project.Detail = nil

		if err := h.projectRepo.Add(r.Context(), &project, req.TechnologyIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.projectRepo.FindByID(r.Context(), project.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectId", created.ID.String()).Str("slug", created.Slug).Msg("Created project")
		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

// updateProject replaces the editable fields of a project. The slug never changes.
// @Summary Update project
// @Tags Admin
// @Param projectID path string true "Project ID" format(uuid)
// @Router /admin/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req projectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := req.Project
		project.ID = projectID
		project.Slug = existing.Slug
		project.Technologies = nil
		project.Detail = nil

		if err := h.projectRepo.Update(r.Context(), &project, req.TechnologyIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{Status: "success", Message: "project deleted successfully"})
	}
}

// upsertDetail creates or replaces the case-study detail of a project
// @Summary Set project detail
// @Tags Admin
// @Param projectID path string true "Project ID" format(uuid)
// @Router /admin/projects/{projectID}/detail [put]
func (h projectHandler) upsertDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var detail models.ProjectDetail
		if err := decodeJSON(w, r, &detail); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.UpsertDetail(r.Context(), projectID, &detail); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}
