package guest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures the slot backend.
// Loaded from GUEST_STORE_* environment variables by ConfigFromEnv.
type Config struct {
	Backend  string        `default:"file" json:"backend" yaml:"backend"`
	Path     string        `json:"path" yaml:"path"`
	RedisURL string        `split_words:"true" json:"redis_url" yaml:"redis_url"`
	Prefix   string        `default:"shopsync:" json:"prefix" yaml:"prefix"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

// ConfigFromEnv reads GUEST_STORE_BACKEND, GUEST_STORE_PATH,
// GUEST_STORE_REDIS_URL, GUEST_STORE_PREFIX and GUEST_STORE_TTL.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("GUEST_STORE", &cfg); err != nil {
		return Config{}, fmt.Errorf("guest store config: %w", err)
	}
	return cfg, nil
}

// Open returns the slot backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Slot, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		return NewMemorySlot(), nil
	case BackendFile, "":
		dir := cfg.Path
		if dir == "" {
			d, err := defaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileSlot(dir)
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			d, err := defaultDir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(d, 0o700); err != nil {
				return nil, fmt.Errorf("sqlite slot: create %s: %w", d, err)
			}
			path = filepath.Join(d, "guest.db")
		}
		return NewSQLiteSlot(ctx, path)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires GUEST_STORE_REDIS_URL")
		}
		return NewRedisSlot(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown guest store backend %q", cfg.Backend)
	}
}

func defaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "shopsync"), nil
}
