package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tnoodle-scrambles/internal/handlers"
	"tnoodle-scrambles/internal/metrics"
	"tnoodle-scrambles/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, scrambleHandler *handlers.ScrambleHandler, requestTimeout time.Duration) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(requestTimeout))

	// routes
	r.Get("/scramble/{file}", scrambleHandler.Scramble)
	r.Get("/puzzles", scrambleHandler.ListPuzzles)

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
