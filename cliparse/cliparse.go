// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = 3318
	DefaultDatabaseType    = "sqlite"
	DefaultEnvFile         = ".env"
	DefaultCacheTTL        = 2 * time.Second
	DefaultLiveInterval    = 2 * time.Second
	DefaultUpstreamTimeout = 5 * time.Second
	DefaultVoteRateLimit   = 1.0
	DefaultVoteRateBurst   = 5
)

type Config struct {
	Port            int
	UpstreamURL     string
	DatabaseURL     string
	DatabaseType    string
	RedisURL        string
	ChartConfig     string
	EnvFile         string
	CacheTTL        time.Duration
	LiveInterval    time.Duration
	UpstreamTimeout time.Duration
	VoteRateLimit   float64
	VoteRateBurst   int
	LogLevel        slog.Level
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet("pollview", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.UpstreamURL, "u", "", "Upstream poll API base URL")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.RedisURL, "r", "", "Redis URL (optional)")
	flags.StringVar(&cfg.ChartConfig, "c", "", "Chart settings YAML file (optional)")
	flags.StringVar(&cfg.EnvFile, "env-file", DefaultEnvFile, "Env file to load before reading the environment")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = os.Getenv("UPSTREAM_URL")
	}
	if cfg.UpstreamURL == "" {
		return Config{}, errors.New("upstream URL required (use -u or UPSTREAM_URL env)")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("database type must be sqlite or postgres, got %q", cfg.DatabaseType)
	}

	// Optional
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.ChartConfig == "" {
		cfg.ChartConfig = os.Getenv("CHART_CONFIG")
	}

	var err error
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.LiveInterval, err = envDuration("LIVE_INTERVAL", DefaultLiveInterval); err != nil {
		return Config{}, err
	}
	if cfg.LiveInterval <= 0 {
		return Config{}, errors.New("LIVE_INTERVAL must be positive")
	}
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout); err != nil {
		return Config{}, err
	}

	cfg.VoteRateLimit = DefaultVoteRateLimit
	if s := os.Getenv("VOTE_RATE_LIMIT"); s != "" {
		if cfg.VoteRateLimit, err = strconv.ParseFloat(s, 64); err != nil || cfg.VoteRateLimit <= 0 {
			return Config{}, errors.New("invalid VOTE_RATE_LIMIT env variable")
		}
	}
	cfg.VoteRateBurst = DefaultVoteRateBurst
	if s := os.Getenv("VOTE_RATE_BURST"); s != "" {
		if cfg.VoteRateBurst, err = strconv.Atoi(s); err != nil || cfg.VoteRateBurst < 1 {
			return Config{}, errors.New("invalid VOTE_RATE_BURST env variable")
		}
	}

	cfg.LogLevel = slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL env variable: %w", err)
		}
	}

	return cfg, nil
}

// loadEnvFile reads KEY=value pairs into the environment. A missing file is
// not an error and variables already set are never overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
