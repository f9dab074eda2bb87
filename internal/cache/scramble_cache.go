package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tnoodle-scrambles/internal/metrics"
	"tnoodle-scrambles/internal/puzzle"
	"tnoodle-scrambles/pkg/logging/logging"
)

// ErrNegativeCount is returned by Take for a negative count.
var ErrNegativeCount = errors.New("cache: negative scramble count")

// ScrambleCache pre-generates scrambles for one puzzle so unseeded requests
// do not wait on generation.
//
// Take never waits for a refill. At most one refill per cache runs at a
// time, and the in-flight flag clears however the refill ends.
type ScrambleCache struct {
	puzzle    string
	scrambler puzzle.Scrambler
	buf       Buffer
	cfg       Config
	random    *rand.Rand
	logger    *zap.Logger
	life      *lifecycle

	refilling atomic.Bool
}

// Puzzle returns the short name this cache serves.
func (c *ScrambleCache) Puzzle() string { return c.puzzle }

// Take returns exactly n scrambles: buffered ones first, oldest first, then
// freshly generated ones for any shortfall. A background refill is
// requested afterwards.
func (c *ScrambleCache) Take(ctx context.Context, n int) ([]string, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	defer c.Refill()

	if n == 0 {
		return []string{}, nil
	}

	out, err := c.buf.Pop(ctx, n)
	if err != nil {
		// the buffer is best-effort; generate everything instead
		logging.L(ctx).Warn("scramble_cache_pop_error",
			zap.String("puzzle", c.puzzle),
			zap.Error(err),
		)
		out = nil
	}
	cached := len(out)

	if shortfall := n - cached; shortfall > 0 {
		fresh, err := c.generate(ctx, shortfall)
		if err != nil {
			// popped scrambles are dropped: the buffer never exceeds
			// HighWater and keeps generation order
			if cached > 0 {
				logging.L(ctx).Debug("scramble_cache_dropped",
					zap.String("puzzle", c.puzzle),
					zap.Int("dropped", cached),
				)
			}
			return nil, fmt.Errorf("cache: generate %d %s scrambles: %w", shortfall, c.puzzle, err)
		}
		out = append(out, fresh...)
	}

	metrics.ScramblesServedTotal.WithLabelValues(c.puzzle, metrics.SourceCache).Add(float64(cached))
	metrics.ScramblesServedTotal.WithLabelValues(c.puzzle, metrics.SourceGenerated).Add(float64(n - cached))

	logging.L(ctx).Debug("scramble_cache_take",
		zap.String("puzzle", c.puzzle),
		zap.Int("requested", n),
		zap.Int("from_cache", cached),
	)
	return out, nil
}

// generate draws n scrambles from the shared random source in parallel.
func (c *ScrambleCache) generate(ctx context.Context, n int) ([]string, error) {
	out := make([]string, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := c.generateOne()
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScrambleCache) generateOne() (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scrambler %s panicked: %v", c.puzzle, rec)
		}
	}()
	return c.scrambler.GenerateScramble(c.random)
}

// Refill starts a background refill up to the high water mark. It reports
// false without doing anything when a refill is already running or the
// cache has been closed.
func (c *ScrambleCache) Refill() bool {
	if !c.refilling.CompareAndSwap(false, true) {
		return false
	}
	if !c.life.add() {
		c.refilling.Store(false)
		return false
	}

	go func() {
		defer c.life.done()
		defer c.refilling.Store(false)
		c.refill()
	}()
	return true
}

// Refilling reports whether a refill is in flight.
func (c *ScrambleCache) Refilling() bool {
	return c.refilling.Load()
}

func (c *ScrambleCache) refill() {
	ctx := logging.WithLogger(c.life.ctx, c.logger)
	start := time.Now()
	generated := 0

	result := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			result = "panic"
			c.logger.Error("scramble_cache_refill_panic",
				zap.Any("error", rec),
				zap.Int("generated", generated),
			)
		}
		metrics.CacheRefillsTotal.WithLabelValues(c.puzzle, result).Inc()
	}()

	for {
		if ctx.Err() != nil {
			result = "cancelled"
			return
		}

		size, err := c.buf.Len(ctx)
		if err != nil {
			result = "error"
			return
		}
		if size >= c.cfg.HighWater {
			break
		}

		batch := make([]string, 0, min(c.cfg.HighWater-size, c.cfg.RefillBatch))
		for len(batch) < cap(batch) {
			s, err := c.scrambler.GenerateScramble(c.random)
			if err != nil {
				result = "error"
				c.logger.Error("scramble_cache_refill_failed",
					zap.Int("generated", generated),
					zap.Error(err),
				)
				return
			}
			batch = append(batch, s)
		}
		if err := c.buf.Push(ctx, batch); err != nil {
			result = "error"
			return
		}
		generated += len(batch)
	}

	if generated > 0 {
		c.logger.Debug("scramble_cache_refilled",
			zap.Int("generated", generated),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// belowLowWater reports whether the buffer has dropped under the low water
// mark. Buffer errors count as low so that the refill retries them.
func (c *ScrambleCache) belowLowWater(ctx context.Context) bool {
	n, err := c.buf.Len(ctx)
	return err != nil || n < c.cfg.LowWater
}
