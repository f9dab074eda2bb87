package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tnoodle-scrambles/internal/registry"
	"tnoodle-scrambles/internal/request"
	"tnoodle-scrambles/pkg/logging/logging"
)

// BatchResolver is implemented by *request.Resolver.
type BatchResolver interface {
	ResolveBatch(ctx context.Context, rounds []request.RawRound, batchSeed *string) (*request.Batch, error)
}

// PuzzleLister is implemented by *registry.Registry.
type PuzzleLister interface {
	Puzzles() []registry.Info
}

// ScrambleHandler serves scramble batches and the puzzle list.
type ScrambleHandler struct {
	Resolver BatchResolver
	Puzzles  PuzzleLister
}

func NewScrambleHandler(resolver BatchResolver, puzzles PuzzleLister) *ScrambleHandler {
	return &ScrambleHandler{
		Resolver: resolver,
		Puzzles:  puzzles,
	}
}

type batchResponse struct {
	Title string `json:"title"`
	*request.Batch
}

// Scramble handles GET /scramble/{file}, where file is <title>.<json|txt>
// and every query parameter except seed names one round.
func (h *ScrambleHandler) Scramble(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	title, ext := splitFile(chi.URLParam(r, "file"))
	if ext != "json" && ext != "txt" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unsupported format %q", ext))
		return
	}

	rounds, seed, err := parseRoundsQuery(r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid seed: "+err.Error())
		return
	}

	batch, err := h.Resolver.ResolveBatch(ctx, rounds, seed)
	if err != nil {
		status := statusFor(err)
		logger.Warn("scramble_request_failed",
			zap.Int("status", status),
			zap.Int("rounds", len(rounds)),
			zap.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}

	logger.Info("scramble_request",
		zap.String("title", title),
		zap.String("batch_id", batch.ID.String()),
		zap.Int("rounds", len(batch.Rounds)),
		zap.Bool("seeded", seed != nil),
		zap.Duration("total_latency", time.Since(start)),
	)

	if ext == "txt" {
		writeText(w, title, batch)
		return
	}
	writeJSON(w, batchResponse{Title: title, Batch: batch})
}

// ListPuzzles handles GET /puzzles.
func (h *ScrambleHandler) ListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Puzzles.Puzzles())
}

// splitFile splits at the last dot; a file without one is served as JSON.
func splitFile(file string) (title, ext string) {
	i := strings.LastIndex(file, ".")
	if i < 0 {
		return file, "json"
	}
	return file[:i], file[i+1:]
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrCapabilityInit):
		return http.StatusServiceUnavailable
	case errors.Is(err, request.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeText(w http.ResponseWriter, title string, batch *request.Batch) {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "%s\n", title)
	}
	fmt.Fprintf(&sb, "Generated at %s\n", batch.Generated.Format(time.RFC3339))
	for _, round := range batch.Rounds {
		fmt.Fprintf(&sb, "\n%s (%s, %d copies)\n", round.Title, round.Puzzle, round.Copies)
		for i, s := range round.Scrambles {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sb.String()))
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"error": msg} with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
