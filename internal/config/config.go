package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	LogLevel string
	Env      string

	// Engine tuning
	TickInterval  time.Duration // scheduler drain interval
	SweepInterval time.Duration // staleness sweep interval
	StaleAfter    time.Duration // registry eviction horizon
	DedupWindow   time.Duration // duplicate suppression window

	// Redis (preferences, dedup, rate limiting)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Postgres (delivery history, optional — disabled when DBHost is empty)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Push channel (AWS SNS, optional — disabled when SNSTargetARN is empty)
	AWSRegion    string
	SNSTargetARN string

	// Rate limiting for the notify endpoint
	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		LogLevel: "info",
		Env:      "development",

		TickInterval:  500 * time.Millisecond,
		SweepInterval: time.Minute,
		StaleAfter:    30 * time.Minute,
		DedupWindow:   30 * time.Second,

		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		DBPort:    5432,
		DBUser:    "beautydesk",
		DBName:    "beautydesk",
		DBSSLMode: "disable",

		AWSRegion: "eu-south-1",

		RateLimit:       120,
		RateLimitWindow: time.Minute,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = p
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	if ms := os.Getenv("NOTIFY_TICK_MS"); ms != "" {
		v, err := strconv.Atoi(ms)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid NOTIFY_TICK_MS: %q", ms)
		}
		cfg.TickInterval = time.Duration(v) * time.Millisecond
	}

	if sec := os.Getenv("NOTIFY_SWEEP_SEC"); sec != "" {
		v, err := strconv.Atoi(sec)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid NOTIFY_SWEEP_SEC: %q", sec)
		}
		cfg.SweepInterval = time.Duration(v) * time.Second
	}

	if min := os.Getenv("NOTIFY_STALE_MIN"); min != "" {
		v, err := strconv.Atoi(min)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid NOTIFY_STALE_MIN: %q", min)
		}
		cfg.StaleAfter = time.Duration(v) * time.Minute
	}

	if sec := os.Getenv("NOTIFY_DEDUP_SEC"); sec != "" {
		v, err := strconv.Atoi(sec)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid NOTIFY_DEDUP_SEC: %q", sec)
		}
		cfg.DedupWindow = time.Duration(v) * time.Second
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisHost = host
	}

	if port := os.Getenv("REDIS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
		}
		cfg.RedisPort = p
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RedisPassword = password
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		d, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = d
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBHost = host
	}

	if port := os.Getenv("DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DBPort = p
	}

	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DBUser = user
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DBPassword = password
	}

	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}

	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.DBSSLMode = sslmode
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}

	if arn := os.Getenv("SNS_TARGET_ARN"); arn != "" {
		cfg.SNSTargetARN = arn
	}

	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %q", limit)
		}
		cfg.RateLimit = v
	}

	if sec := os.Getenv("RATE_LIMIT_WINDOW_SEC"); sec != "" {
		v, err := strconv.Atoi(sec)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SEC: %q", sec)
		}
		cfg.RateLimitWindow = time.Duration(v) * time.Second
	}

	return cfg, nil
}

// HistoryEnabled reports whether the delivery history journal is configured.
func (c *Config) HistoryEnabled() bool {
	return c.DBHost != ""
}

// PushEnabled reports whether the SNS push channel is configured.
func (c *Config) PushEnabled() bool {
	return c.SNSTargetARN != ""
}
