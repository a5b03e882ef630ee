package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/services"
)

// MediaStore keeps uploaded files and returns their public URL.
type MediaStore interface {
	Put(ctx context.Context, upload services.Upload) (string, error)
}

type mediaHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     MediaStore
}

func newMediaHandler(store MediaStore) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()
	return mediaHandler{responder: NewResponder(logger), logger: logger, store: store}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// upload accepts a multipart form with "folder" and "file" and stores the file
// @Summary Upload media
// @Tags Admin
// @Accept multipart/form-data
// @Router /admin/media [post]
func (h mediaHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			h.responder.WriteError(w, errs.NewApiErr(http.StatusServiceUnavailable, "media store is not configured"))
			return
		}

		// Leave room for the multipart envelope around the file itself
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+1<<20)
		if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxUploadSize))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("file", "required"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			sniff := make([]byte, 512)
			n, _ := io.ReadFull(file, sniff)
			contentType = http.DetectContentType(sniff[:n])
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		if i := strings.Index(contentType, ";"); i >= 0 {
			contentType = strings.TrimSpace(contentType[:i])
		}

		url, err := h.store.Put(r.Context(), services.Upload{
			Folder:      r.FormValue("folder"),
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("url", url).Msg("Uploaded media")
		h.responder.WriteJSONStatus(w, http.StatusCreated, uploadResponse{URL: url})
	}
}
