// Package request turns raw round requests into fully populated rounds,
// choosing between cached random scrambles and seeded generation.
package request

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tnoodle-scrambles/internal/metrics"
	"tnoodle-scrambles/internal/puzzle"
	"tnoodle-scrambles/pkg/logging/logging"
)

// Scramblers resolves a puzzle short name. Implemented by *registry.Registry.
type Scramblers interface {
	Resolve(id string) (puzzle.Scrambler, error)
}

// Caches serves unseeded scrambles. Implemented by *cache.Manager.
type Caches interface {
	Take(ctx context.Context, s puzzle.Scrambler, n int) ([]string, error)
}

// Round is one resolved round. It is not modified after ResolveRound
// returns.
type Round struct {
	Title       string             `json:"title"`
	Puzzle      string             `json:"puzzle"`
	Scrambler   puzzle.Scrambler   `json:"-"`
	Count       int                `json:"count"`
	Copies      int                `json:"copies"`
	ColorScheme puzzle.ColorScheme `json:"colorScheme"`
	Scrambles   []string           `json:"scrambles"`
	Seeded      bool               `json:"seeded"`
}

// RawRound is one entry of a batch: a percent-encoded title and its raw
// request text.
type RawRound struct {
	Title   string
	Request string
}

// Batch is the ordered result of ResolveBatch.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	Generated time.Time `json:"generated"`
	Rounds    []*Round  `json:"rounds"`
}

var errDuplicateTitle = errors.New("duplicate round title")

// Resolver is safe for concurrent use.
type Resolver struct {
	parser     *Parser
	scramblers Scramblers
	caches     Caches
}

// NewResolver wires the parser, registry and caches together. Logging goes
// to the logger carried by each call's context.
func NewResolver(cfg Config, scramblers Scramblers, caches Caches) (*Resolver, error) {
	parser, err := NewParser(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid request config: %w", err)
	}
	return &Resolver{
		parser:     parser,
		scramblers: scramblers,
		caches:     caches,
	}, nil
}

// Seed wraps s for the optional seed arguments.
func Seed(s string) *string {
	return &s
}

// DeriveSeed prefixes the batch seed with the round title so that rounds
// sharing a seed still get different scrambles.
func DeriveSeed(title, batchSeed string) string {
	return title + batchSeed
}

// ResolveRound decodes title, parses raw and fills in the scrambles: from
// seed when it is non-nil, otherwise from the puzzle's cache.
func (r *Resolver) ResolveRound(ctx context.Context, title, raw string, seed *string) (*Round, error) {
	decodedTitle, err := url.QueryUnescape(title)
	if err != nil {
		return nil, &InvalidRequestError{Title: title, Raw: raw, Err: fmt.Errorf("title: %w", err)}
	}

	fields, err := r.parser.Parse(raw)
	if err != nil {
		var ire *InvalidRequestError
		if errors.As(err, &ire) {
			ire.Title = decodedTitle
		}
		return nil, err
	}

	s, err := r.scramblers.Resolve(fields.Puzzle)
	if err != nil {
		return nil, &InvalidRequestError{Title: decodedTitle, Raw: raw, Err: err}
	}

	var scrambles []string
	if seed != nil {
		scrambles, err = s.GenerateSeededScrambles(*seed, fields.Count)
		if err == nil && len(scrambles) != fields.Count {
			err = fmt.Errorf("scrambler returned %d scrambles, want %d", len(scrambles), fields.Count)
		}
		if err == nil {
			metrics.ScramblesServedTotal.WithLabelValues(fields.Puzzle, metrics.SourceSeeded).Add(float64(fields.Count))
		}
	} else {
		scrambles, err = r.caches.Take(ctx, s, fields.Count)
	}
	if err != nil {
		return nil, fmt.Errorf("request: round %q: %s scrambles: %w", decodedTitle, fields.Puzzle, err)
	}

	scheme, err := s.ParseColorScheme(fields.ColorScheme)
	if err != nil {
		logging.L(ctx).Debug("color_scheme_rejected",
			zap.String("round", decodedTitle),
			zap.String("puzzle", fields.Puzzle),
			zap.String("color_scheme", fields.ColorScheme),
			zap.Error(err),
		)
		scheme = s.DefaultColorScheme()
	}

	return &Round{
		Title:       decodedTitle,
		Puzzle:      fields.Puzzle,
		Scrambler:   s,
		Count:       fields.Count,
		Copies:      fields.Copies,
		ColorScheme: scheme,
		Scrambles:   scrambles,
		Seeded:      seed != nil,
	}, nil
}

// ResolveBatch resolves rounds in order. When batchSeed is non-nil each
// round is seeded with DeriveSeed(title, *batchSeed). The first failing
// round fails the whole batch.
func (r *Resolver) ResolveBatch(ctx context.Context, rounds []RawRound, batchSeed *string) (*Batch, error) {
	if len(rounds) == 0 {
		return nil, ErrEmptyBatch
	}

	batch := &Batch{
		ID:        uuid.New(),
		Generated: time.Now(),
		Rounds:    make([]*Round, 0, len(rounds)),
	}
	ctx = logging.WithFields(ctx, zap.String("batch_id", batch.ID.String()))
	logger := logging.L(ctx)
	start := time.Now()

	seen := make(map[string]bool, len(rounds))
	for _, raw := range rounds {
		if seen[raw.Title] {
			return nil, &InvalidRequestError{Title: raw.Title, Raw: raw.Request, Err: errDuplicateTitle}
		}
		seen[raw.Title] = true

		var seed *string
		if batchSeed != nil {
			seed = Seed(DeriveSeed(raw.Title, *batchSeed))
		}

		round, err := r.ResolveRound(ctx, raw.Title, raw.Request, seed)
		if err != nil {
			logger.Warn("batch_failed",
				zap.String("round", raw.Title),
				zap.String("request", raw.Request),
				zap.Error(err),
			)
			return nil, err
		}
		batch.Rounds = append(batch.Rounds, round)
	}

	logger.Info("batch_resolved",
		zap.Int("rounds", len(batch.Rounds)),
		zap.Bool("seeded", batchSeed != nil),
		zap.Duration("duration", time.Since(start)),
	)
	return batch, nil
}
