package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/portfolio-content-backend/errs"
)

// maxJSONBodySize bounds every JSON request body.
const maxJSONBodySize = 1 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first so a failure can still produce a 500
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// reportError sends an unexpected failure to Sentry. It is a no-op when Sentry was not initialised.
func (r Responder) reportError(err error) {
	if hub := sentry.CurrentHub(); hub != nil && hub.Client() != nil {
		hub.CaptureException(err)
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unexpected errors never reach the client
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.reportError(err)
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.IsServerError() {
		r.logger.Error().
			Int("status", apiErr.StatusCode).
			Str("error", apiErr.GetFullError()).
			Msg("server error")
		r.reportError(apiErr)
		r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
			Error:  http.StatusText(apiErr.StatusCode),
			Status: "error",
		})
		return
	}

	response := ErrorResponse{
		Error:   apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Fields:  apiErr.Fields,
		Details: apiErr.Details,
	}
	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError("JSON", err)
		default:
			return errs.NewInvalidJSONError(err)
		}
	}
	if dec.More() {
		return errs.NewInvalidJSONError(errors.New("unexpected data after JSON body"))
	}
	return nil
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a UUID")
	}
	return id, nil
}

// pageParam reads ?page=, defaulting to the first page.
func pageParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errs.NewInvalidFieldError("page", "must be a positive integer")
	}
	return page, nil
}

// boolParam reads an optional boolean query parameter. Absent means no filter.
func boolParam(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.NewInvalidFieldError(name, "must be true or false")
	}
	return &v, nil
}
