package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
	"github.com/rpupo63/portfolio-content-backend/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type siteHandler struct {
	responder   Responder
	logger      zerolog.Logger
	siteRepo    *database.SiteConfigurationRepo
	stats       *services.StatsService
	store       pinger
	startupTime time.Time
}

func newSiteHandler(siteRepo *database.SiteConfigurationRepo, stats *services.StatsService, store pinger, startupTime time.Time) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		siteRepo:    siteRepo,
		stats:       stats,
		store:       store,
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Status    string   `json:"status"`
	Database  string   `json:"database"`
	Uptime    string   `json:"uptime"`
	Endpoints []string `json:"endpoints"`
}

// health reports API status and the public endpoints
// @Summary Health check
// @Tags Site
// @Router /health [get]
func (h siteHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:    "ok",
			Database:  "ok",
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
			Endpoints: publicEndpoints,
		}
		status := http.StatusOK
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Database ping failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
		h.responder.WriteJSONStatus(w, status, resp)
	}
}

// getMetadata returns the site configuration, or the default profile when none is stored
// @Summary Site metadata
// @Tags Site
// @Router /metadata [get]
func (h siteHandler) getMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := h.siteRepo.GetOrDefault(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, cfg)
	}
}

// getStats returns live content counts merged with the configured statistics
// @Summary Site statistics
// @Tags Site
// @Router /stats [get]
func (h siteHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.stats.Compute(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

func (h siteHandler) getSiteConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := h.siteRepo.Get(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, cfg)
	}
}

// createSiteConfiguration stores the site configuration. A second create is rejected.
// @Summary Create site configuration
// @Tags Admin
// @Router /admin/site-configuration [post]
func (h siteHandler) createSiteConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg models.SiteConfiguration
		if err := decodeJSON(w, r, &cfg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.siteRepo.Create(r.Context(), &cfg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, cfg)
	}
}

func (h siteHandler) updateSiteConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg models.SiteConfiguration
		if err := decodeJSON(w, r, &cfg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.siteRepo.Update(r.Context(), &cfg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.siteRepo.Get(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteSiteConfiguration always fails with 403
func (h siteHandler) deleteSiteConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteError(w, h.siteRepo.Delete(r.Context()))
	}
}
