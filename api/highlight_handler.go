package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
)

type highlightHandler struct {
	responder     Responder
	logger        zerolog.Logger
	highlightRepo *database.CareerHighlightRepo
}

func newHighlightHandler(highlightRepo *database.CareerHighlightRepo) highlightHandler {
	logger := log.With().Str("handlerName", "highlightHandler").Logger()

	return highlightHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		highlightRepo: highlightRepo,
	}
}

type highlightRequest struct {
	models.CareerHighlight
	TechnologyIDs []uuid.UUID `json:"technology_ids"`
}

// listHighlights returns the career timeline with linked technologies
// @Summary Career highlights
// @Tags Highlights
// @Router /highlights [get]
func (h highlightHandler) listHighlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		highlights, err := h.highlightRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, highlights)
	}
}

func (h highlightHandler) createHighlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req highlightRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		highlight := req.CareerHighlight
		highlight.ID = uuid.Nil
		highlight.Technologies = nil

		if err := h.highlightRepo.Add(r.Context(), &highlight, req.TechnologyIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.highlightRepo.FindByID(r.Context(), highlight.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

func (h highlightHandler) updateHighlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		highlightID, err := idParam(r, "highlightID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req highlightRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.highlightRepo.FindByID(r.Context(), highlightID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		highlight := req.CareerHighlight
		highlight.ID = highlightID
		highlight.CreatedAt = existing.CreatedAt
		highlight.Technologies = nil

		if err := h.highlightRepo.Update(r.Context(), &highlight, req.TechnologyIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.highlightRepo.FindByID(r.Context(), highlightID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

func (h highlightHandler) deleteHighlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		highlightID, err := idParam(r, "highlightID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.highlightRepo.Delete(r.Context(), highlightID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, messageResponse{Status: "success", Message: "highlight deleted successfully"})
	}
}
