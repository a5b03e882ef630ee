package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
)

type techHandler struct {
	responder      Responder
	logger         zerolog.Logger
	categoryRepo   *database.TechCategoryRepo
	technologyRepo *database.TechnologyRepo
}

func newTechHandler(categoryRepo *database.TechCategoryRepo, technologyRepo *database.TechnologyRepo) techHandler {
	logger := log.With().Str("handlerName", "techHandler").Logger()

	return techHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		categoryRepo:   categoryRepo,
		technologyRepo: technologyRepo,
	}
}

// technologyView adds the category name and proficiency label to a technology.
type technologyView struct {
	models.Technology
	CategoryName     string `json:"category_name"`
	ProficiencyLabel string `json:"proficiency_label"`
}

func newTechnologyView(t models.Technology) technologyView {
	view := technologyView{Technology: t, ProficiencyLabel: t.ProficiencyLabel()}
	if t.Category != nil {
		view.CategoryName = t.Category.Name
	}
	view.Category = nil
	return view
}

// listTechnologies returns every technology with its category name
// @Summary List technologies
// @Tags Technologies
// @Router /technologies [get]
func (h techHandler) listTechnologies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		techs, err := h.technologyRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		views := make([]technologyView, 0, len(techs))
		for _, t := range techs {
			views = append(views, newTechnologyView(t))
		}
		h.responder.WriteJSON(w, views)
	}
}

// techStack returns the categories that have technologies, each with its technologies
// @Summary Tech stack
// @Tags Technologies
// @Router /tech-stack [get]
func (h techHandler) techStack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categoryRepo.TechStack(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, categories)
	}
}

func (h techHandler) listCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categoryRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, categories)
	}
}

func (h techHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category models.TechCategory
		if err := decodeJSON(w, r, &category); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		category.ID = uuid.Nil
		category.Technologies = nil

		if err := h.categoryRepo.Add(r.Context(), &category); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, category)
	}
}

func (h techHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := idParam(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var category models.TechCategory
		if err := decodeJSON(w, r, &category); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		category.ID = categoryID

		if err := h.categoryRepo.Update(r.Context(), &category); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.categoryRepo.FindByID(r.Context(), categoryID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

type categoryDeleteResponse struct {
	Status              string   `json:"status"`
	DeletedTechnologies []string `json:"deleted_technologies"`
}

// deleteCategory removes a category and, with it, every technology in the category
// @Summary Delete tech category
// @Tags Admin
// @Param categoryID path string true "Category ID" format(uuid)
// @Router /admin/tech-categories/{categoryID} [delete]
func (h techHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := idParam(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		removed, err := h.categoryRepo.Delete(r.Context(), categoryID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Str("categoryId", categoryID.String()).
			Strs("technologies", removed).
			Msg("Deleted tech category")
		h.responder.WriteJSON(w, categoryDeleteResponse{Status: "success", DeletedTechnologies: removed})
	}
}

func (h techHandler) getTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologyID, err := idParam(r, "technologyID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tech, err := h.technologyRepo.FindByID(r.Context(), technologyID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newTechnologyView(*tech))
	}
}

func (h techHandler) createTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tech models.Technology
		if err := decodeJSON(w, r, &tech); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tech.ID = uuid.Nil
		tech.Category = nil

		if err := h.technologyRepo.Add(r.Context(), &tech); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.technologyRepo.FindByID(r.Context(), tech.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, newTechnologyView(*created))
	}
}

func (h techHandler) updateTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologyID, err := idParam(r, "technologyID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var tech models.Technology
		if err := decodeJSON(w, r, &tech); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tech.ID = technologyID
		tech.Category = nil

		if err := h.technologyRepo.Update(r.Context(), &tech); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.technologyRepo.FindByID(r.Context(), technologyID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newTechnologyView(*updated))
	}
}

func (h techHandler) deleteTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologyID, err := idParam(r, "technologyID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.technologyRepo.Delete(r.Context(), technologyID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, messageResponse{Status: "success", Message: "technology deleted successfully"})
	}
}
