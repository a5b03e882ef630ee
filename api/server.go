package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/config"
	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// Collaborators are the external services the router hands to its handlers. Either may be nil.
type Collaborators struct {
	Notifier   services.Notifier
	MediaStore MediaStore
}

func NewServer(database database.Database, c map[string]string, collaborators Collaborators) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router := newRouter(database,
		withConfig(c),
		withStartupTime(startupTime),
		withNotifier(collaborators.Notifier),
		withMediaStore(collaborators.MediaStore),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout: time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		IdleTimeout:  time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	notifier    services.Notifier
	mediaStore  MediaStore
	accessLog   func(http.Handler) http.Handler
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withNotifier(n services.Notifier) func(*router) {
	return func(r *router) {
		r.notifier = n
	}
}

func withMediaStore(m MediaStore) func(*router) {
	return func(r *router) {
		r.mediaStore = m
	}
}

func withAccessLog(mw func(http.Handler) http.Handler) func(*router) {
	return func(r *router) {
		r.accessLog = mw
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	router := router{accessLog: ColoredHTTPLoggingMiddleware}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(router.accessLog)

	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	auth := newAdminAuth(
		config.GetString(router.config, "BACKEND_PASSWORD", ""),
		config.GetString(router.config, "ADMIN_TOKEN_SECRET", ""),
		config.GetDuration(router.config, "ADMIN_TOKEN_TTL", 12*time.Hour),
	)
	contactCfg := services.ContactConfig{
		NotifyTimeout: time.Duration(config.GetInt(router.config, "EMAIL_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	handlers := initializeHandlers(database, router, auth, contactCfg)

	chiRouter.Route("/api/v1", func(r chi.Router) {
		setupPublicRoutes(r, handlers)
		r.Route("/admin", func(r chi.Router) {
			setupAdminRoutes(r, handlers, newAuthMiddleware(auth))
		})
	})

	return chiRouter
}

// Start serves until the listener fails. A graceful shutdown sends nothing on errChannel.
func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		errChannel <- err
	}
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
