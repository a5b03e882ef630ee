package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/services"
)

type contactHandler struct {
	responder   Responder
	logger      zerolog.Logger
	intake      *services.ContactIntake
	contactRepo *database.ContactSubmissionRepo
}

func newContactHandler(intake *services.ContactIntake, contactRepo *database.ContactSubmissionRepo) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		intake:      intake,
		contactRepo: contactRepo,
	}
}

type contactResponse struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

// remoteIP strips the port from the address chi's RealIP middleware left on the request.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// submit stores a contact form submission and notifies the site owner
// @Summary Submit contact form
// @Tags Contact
// @Param submission body services.ContactInput true "Contact form"
// @Success 201 {object} contactResponse
// @Failure 400 {object} ErrorResponse
// @Router /contact [post]
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ContactInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.IPAddress = remoteIP(r)
		in.UserAgent = r.UserAgent()

		result, err := h.intake.Submit(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, contactResponse{
			Success:   true,
			ID:        result.Submission.ID.String(),
			Message:   "Thank you for your message! I'll get back to you soon.",
			EmailSent: result.Notified,
		})
	}
}

// listSubmissions returns one page of submissions, newest first. ?unread=true hides read ones.
func (h contactHandler) listSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		unread, err := boolParam(r, "unread")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submissions, err := h.contactRepo.List(r.Context(), page, unread != nil && *unread)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, submissions)
	}
}

func (h contactHandler) getSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID, err := idParam(r, "submissionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		submission, err := h.contactRepo.FindByID(r.Context(), submissionID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, submission)
	}
}

// updateFlags marks a submission read or replied
func (h contactHandler) updateFlags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID, err := idParam(r, "submissionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var flags database.ContactFlags
		if err := decodeJSON(w, r, &flags); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submission, err := h.contactRepo.SetFlags(r.Context(), submissionID, flags)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, submission)
	}
}
