package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tnoodle-scrambles/internal/puzzle"
)

// lifecycle tracks refill goroutines so Close can wait for them.
type lifecycle struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func (l *lifecycle) add() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	l.wg.Add(1)
	return true
}

func (l *lifecycle) done() { l.wg.Done() }

// Manager owns one ScrambleCache per puzzle. Caches are created on first
// use and share the process-wide random source.
type Manager struct {
	cfg         Config
	redisClient *redis.Client
	random      *rand.Rand
	logger      *zap.Logger
	life        *lifecycle

	mu     sync.Mutex
	caches map[string]*ScrambleCache

	stopCheck chan struct{}
	closeOnce sync.Once
}

// NewManager validates cfg and starts the periodic low water check.
// redisClient is only used by the redis backend.
func NewManager(cfg Config, redisClient *redis.Client, logger *zap.Logger) (*Manager, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}
	if cfg.Backend == BackendRedis && redisClient == nil {
		return nil, errors.New("invalid cache config: redis backend without a client")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:         cfg,
		redisClient: redisClient,
		random:      puzzle.NewRandom(),
		logger:      logger.Named("scramblecache"),
		life:        &lifecycle{ctx: ctx, cancel: cancel},
		caches:      make(map[string]*ScrambleCache),
		stopCheck:   make(chan struct{}),
	}

	go m.checkLowWater()

	return m, nil
}

// For returns the cache for s, creating it and starting its first refill
// if needed.
func (m *Manager) For(s puzzle.Scrambler) *ScrambleCache {
	name := s.ShortName()

	m.mu.Lock()
	c, ok := m.caches[name]
	if !ok {
		c = &ScrambleCache{
			puzzle:    name,
			scrambler: s,
			buf:       NewBuffer(m.cfg, m.redisClient, name),
			cfg:       m.cfg,
			random:    m.random,
			logger:    m.logger.With(zap.String("puzzle", name)),
			life:      m.life,
		}
		m.caches[name] = c
	}
	m.mu.Unlock()

	if !ok {
		c.Refill()
	}
	return c
}

// Take pops n scrambles from the cache for s.
func (m *Manager) Take(ctx context.Context, s puzzle.Scrambler, n int) ([]string, error) {
	return m.For(s).Take(ctx, n)
}

// Prewarm creates caches for every scrambler so their buffers fill before
// the first request arrives.
func (m *Manager) Prewarm(scramblers ...puzzle.Scrambler) {
	for _, s := range scramblers {
		m.For(s)
	}
}

func (m *Manager) snapshot() []*ScrambleCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ScrambleCache, 0, len(m.caches))
	for _, c := range m.caches {
		out = append(out, c)
	}
	return out
}

// checkLowWater periodically refills caches that dropped under the low
// water mark outside of Take, e.g. a shared Redis list drained by another
// process.
func (m *Manager) checkLowWater() {
	ticker := time.NewTicker(m.cfg.CheckEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.snapshot() {
				if !c.Refilling() && c.belowLowWater(m.life.ctx) {
					c.Refill()
				}
			}
		case <-m.stopCheck:
			return
		}
	}
}

// Close stops background work and waits for running refills to return.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCheck)

		m.life.mu.Lock()
		m.life.closed = true
		m.life.mu.Unlock()

		m.life.cancel()
		m.life.wg.Wait()
	})
	return nil
}
