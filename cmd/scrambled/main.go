package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tnoodle-scrambles/internal/cache"
	"tnoodle-scrambles/internal/handlers"
	"tnoodle-scrambles/internal/httpserver"
	"tnoodle-scrambles/internal/metrics"
	"tnoodle-scrambles/internal/puzzle"
	"tnoodle-scrambles/internal/registry"
	"tnoodle-scrambles/internal/request"
	"tnoodle-scrambles/pkg/logging/logging"
)

type Config struct {
	Port           string
	CacheBackend   string // "memory" or "redis"
	CachePrefix    string
	RedisAddr      string
	LowWater       int
	HighWater      int
	Prewarm        []string // puzzle short names, or "all"
	NumberPolicy   string   // "clamp" or "reject"
	RequestTimeout time.Duration
}

func LoadConfig() (Config, error) {
	low, err := getenvInt("CACHE_LOW_WATER", 0)
	if err != nil {
		return Config{}, err
	}
	high, err := getenvInt("CACHE_HIGH_WATER", 0)
	if err != nil {
		return Config{}, err
	}
	timeout, err := time.ParseDuration(getenv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}

	var prewarm []string
	for _, name := range strings.Split(getenv("CACHE_PREWARM", ""), ",") {
		if name = strings.TrimSpace(name); name != "" {
			prewarm = append(prewarm, name)
		}
	}

	return Config{
		Port:           getenv("PORT", "2014"),
		CacheBackend:   getenv("CACHE_BACKEND", cache.BackendMemory),
		CachePrefix:    getenv("CACHE_PREFIX", "tnoodle"),
		RedisAddr:      getenv("REDIS_ADDR", "127.0.0.1:6379"),
		LowWater:       low,
		HighWater:      high,
		Prewarm:        prewarm,
		NumberPolicy:   getenv("NEGATIVE_NUMBER_POLICY", string(request.PolicyClamp)),
		RequestTimeout: timeout,
	}, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("scrambled exited with error: %v", err)
	}
}

func run() error {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Int("cache_low_water", cfg.LowWater),
		zap.Int("cache_high_water", cfg.HighWater),
		zap.Strings("cache_prewarm", cfg.Prewarm),
		zap.String("number_policy", cfg.NumberPolicy),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == cache.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer redisClient.Close()

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Puzzle registry -----
	reg, err := registry.New(puzzle.Builtins(), logger)
	if err != nil {
		return err
	}

	// ----- Scramble caches -----
	caches, err := cache.NewManager(cache.Config{
		Backend:   cfg.CacheBackend,
		Prefix:    cfg.CachePrefix,
		LowWater:  cfg.LowWater,
		HighWater: cfg.HighWater,
	}, redisClient, logger)
	if err != nil {
		return err
	}
	defer caches.Close()

	prewarm(reg, caches, cfg.Prewarm, logger)

	// ----- Resolver + handlers -----
	resolver, err := request.NewResolver(request.Config{
		Negative: request.NumberPolicy(cfg.NumberPolicy),
	}, reg, caches)
	if err != nil {
		return err
	}
	scrambleHandler := handlers.NewScrambleHandler(resolver, reg)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, scrambleHandler, cfg.RequestTimeout)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting scramble server",
		zap.String("addr", srv.Addr),
		zap.Strings("puzzles", reg.Names()),
	)

	// Start server in background
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		logger.Error("server error", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// prewarm starts filling the caches named in names ("all" for every
// puzzle). A puzzle that fails to construct is logged and skipped.
func prewarm(reg *registry.Registry, caches *cache.Manager, names []string, logger *zap.Logger) {
	if len(names) == 1 && names[0] == "all" {
		names = reg.Names()
	}
	for _, name := range names {
		s, err := reg.Resolve(name)
		if err != nil {
			logger.Warn("prewarm skipped", zap.String("puzzle", name), zap.Error(err))
			continue
		}
		caches.Prewarm(s)
	}
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
