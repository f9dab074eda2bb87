package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tnoodle-scrambles/internal/metrics"
	"tnoodle-scrambles/pkg/logging/logging"
)

// LoggingBuffer wraps a Buffer with logging + metrics.
type LoggingBuffer struct {
	inner   Buffer
	backend string
	key     string
	puzzle  string
}

// NewLoggingBuffer returns a buffer that logs and records metrics.
func NewLoggingBuffer(inner Buffer, backend, key string) Buffer {
	puzzle, ok := PuzzleFromKey(key)
	if !ok {
		puzzle = key
	}
	return &LoggingBuffer{inner: inner, backend: backend, key: key, puzzle: puzzle}
}

func (b *LoggingBuffer) Push(ctx context.Context, scrambles []string) error {
	start := time.Now()
	err := b.inner.Push(ctx, scrambles)
	b.observe("push", start)

	if err != nil {
		logging.L(ctx).Error("scramble_buffer_push", append(b.fields(start), zap.Int("count", len(scrambles)), zap.Error(err))...)
	}
	return err
}

func (b *LoggingBuffer) Pop(ctx context.Context, n int) ([]string, error) {
	start := time.Now()
	out, err := b.inner.Pop(ctx, n)
	b.observe("pop", start)

	fields := append(b.fields(start), zap.Int("requested", n), zap.Int("popped", len(out)))
	if err != nil {
		logging.L(ctx).Error("scramble_buffer_pop", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("scramble_buffer_pop", fields...)
	}
	return out, err
}

// Len also refreshes the buffer size gauge.
func (b *LoggingBuffer) Len(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := b.inner.Len(ctx)
	b.observe("len", start)

	if err != nil {
		logging.L(ctx).Error("scramble_buffer_len", append(b.fields(start), zap.Error(err))...)
		return n, err
	}
	metrics.CacheBufferSize.WithLabelValues(b.puzzle).Set(float64(n))
	return n, nil
}

func (b *LoggingBuffer) observe(op string, start time.Time) {
	metrics.BufferOpSeconds.WithLabelValues(b.backend, op).Observe(time.Since(start).Seconds())
}

func (b *LoggingBuffer) fields(start time.Time) []zap.Field {
	return []zap.Field{
		zap.String("backend", b.backend),
		zap.String("buffer_key", b.key),
		zap.String("puzzle", b.puzzle),
		zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
	}
}
