package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DBDriver     string
	DBDSN        string
	RedisAddr    string
	LogFile      string
	LogLevel     string
	RateLimit    int
	RateWindow   time.Duration
	EventWorkers int
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		DBDriver:     "sqlite",
		DBDSN:        "data.db",
		LogFile:      "logs/app.log",
		LogLevel:     "info",
		RateLimit:    100,
		RateWindow:   time.Hour,
		EventWorkers: 2,
	}
}

// Load reads the environment, after loading any of the given .env files that exist.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("DB_DRIVER", &cfg.DBDriver)
	str("DB_DSN", &cfg.DBDSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RATE_LIMIT must be a positive integer, got %q", v)
		}
		cfg.RateLimit = n
	}
	if v, ok := lookup("RATE_WINDOW"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("RATE_WINDOW must be a positive duration, got %q", v)
		}
		cfg.RateWindow = d
	}
	if v, ok := lookup("EVENT_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("EVENT_WORKERS must be a positive integer, got %q", v)
		}
		cfg.EventWorkers = n
	}

	switch cfg.DBDriver {
	case "sqlite", "sqlite3", "mysql":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be sqlite, sqlite3 or mysql, got %q", cfg.DBDriver)
	}
	return cfg, nil
}
