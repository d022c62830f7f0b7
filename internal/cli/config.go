package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/roach88/chipsim/internal/engine"
)

// Environment variables read by LoadConfig.
const (
	EnvDB        = "CHIPSIM_DB"
	EnvCacheSize = "CHIPSIM_CACHE_SIZE"
)

// DefaultDBPath is the revision database used when CHIPSIM_DB is unset.
const DefaultDBPath = "chipsim.db"

// Config holds environment-derived defaults for the CLI.
type Config struct {
	DBPath    string
	CacheSize int
}

// DefaultConfig returns the configuration used without any environment.
func DefaultConfig() *Config {
	return &Config{
		DBPath:    DefaultDBPath,
		CacheSize: engine.DefaultCacheSize,
	}
}

// LoadConfig loads .env files (the working directory's .env when none are
// named; a missing file is not an error) into the process environment and
// reads the CHIPSIM_* variables. Variables already set in the environment
// take precedence over .env files.
func LoadConfig(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := DefaultConfig()
	if db := strings.TrimSpace(os.Getenv(EnvDB)); db != "" {
		cfg.DBPath = db
	}
	if raw := strings.TrimSpace(os.Getenv(EnvCacheSize)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvCacheSize, raw)
		}
		cfg.CacheSize = n
	}
	return cfg, nil
}
