package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap/zaptest"

	"tnoodle-scrambles/internal/cache"
	"tnoodle-scrambles/internal/handlers"
	"tnoodle-scrambles/internal/puzzle"
	"tnoodle-scrambles/internal/registry"
	"tnoodle-scrambles/internal/request"
)

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := zaptest.NewLogger(t)

	reg, err := registry.New(puzzle.Builtins(), logger)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	caches, err := cache.NewManager(cache.Config{HighWater: 4, CheckEvery: time.Hour}, nil, logger)
	if err != nil {
		t.Fatalf("cache.NewManager: %v", err)
	}
	t.Cleanup(func() { caches.Close() })

	resolver, err := request.NewResolver(request.Config{}, reg, caches)
	if err != nil {
		t.Fatalf("request.NewResolver: %v", err)
	}

	r := chi.NewRouter()
	SetupRouter(r, logger, handlers.NewScrambleHandler(resolver, reg), 5*time.Second)
	return r
}

func TestRouterRoutes(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"healthz", "/healthz", http.StatusOK, "ok"},
		{"metrics", "/metrics", http.StatusOK, "go_goroutines"},
		{"puzzles", "/puzzles", http.StatusOK, `"3x3x3"`},
		{"scramble", "/scramble/Comp.txt?R1=3x3x3*2&seed=abc", http.StatusOK, "R1"},
		{"unknown route", "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d (%s)", tt.status, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.body) {
				t.Fatalf("expected body to contain %q, got %s", tt.body, rr.Body.String())
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	r := newRouter(t)

	var id string
	r.Get("/probe", func(w http.ResponseWriter, req *http.Request) {
		id = chimw.GetReqID(req.Context())
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe", nil))
	if id == "" {
		t.Fatalf("expected request id in context")
	}
}
