package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/shared/middleware"
)

// HealthPath answers liveness probes without authentication.
const HealthPath = "/healthz"

// NewRouter builds the HTTP router. Routes under /v1 require a caller token.
func NewRouter(
	logger *zerolog.Logger,
	authMiddleware func(http.Handler) http.Handler,
	linkHandler *LinkHTTPHandler,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID(logger))

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(chimiddleware.Timeout(requestTimeout))
		linkHandler.RegisterRoutes(r)
	})

	return r
}
