package cache

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Backend string // "memory" or "redis"
	Prefix  string

	LowWater    int           // refill below this many buffered scrambles (default: 25)
	HighWater   int           // refill stops here (default: 100)
	RefillBatch int           // scrambles generated per buffer push (default: 10)
	Workers     int           // parallel shortfall generation (default: GOMAXPROCS)
	CheckEvery  time.Duration // low-water check interval (default: 30s)
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.HighWater <= 0 {
		cfg.HighWater = 100
	}
	if cfg.LowWater <= 0 {
		cfg.LowWater = cfg.HighWater / 4
	}
	if cfg.RefillBatch <= 0 {
		cfg.RefillBatch = 10
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = 30 * time.Second
	}
	return cfg
}

// Validate checks the water marks and backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if c.LowWater > c.HighWater {
		return errors.New("low water mark exceeds high water mark")
	}
	return nil
}

// NewBuffer builds the buffer for one puzzle on the configured backend,
// wrapped with logging and metrics.
func NewBuffer(cfg Config, redisClient *redis.Client, puzzle string) Buffer {
	key := BufferKey(cfg.Prefix, puzzle)

	var inner Buffer
	switch cfg.Backend {
	case BackendRedis:
		inner = NewRedisBuffer(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
			Puzzle: puzzle,
		})
	default:
		inner = NewMemoryBuffer()
	}
	return NewLoggingBuffer(inner, cfg.Backend, key)
}
