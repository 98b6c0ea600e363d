// Package config handles loading and validation of shopsync configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"gopkg.in/yaml.v3"

	"shopsync/internal/guest"
	"shopsync/internal/reconcile"
)

// Defaults applied when a setting is absent.
const (
	DefaultPort       = "8080"
	DefaultTimeout    = 10 * time.Second
	DefaultSecretName = "shopsync-api-key"
)

// Config holds all shopsync configuration.
// Environment determines whether the API key loads from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings (devapi)
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"
	CatalogFile string

	// GCP settings (required in production)
	GCPProject string
	SecretName string

	// Storefront API the client talks to
	API APIConfig

	MergePolicy reconcile.MergePolicy

	// Guest slot backend
	Guest guest.Config
}

// APIConfig describes the remote storefront API.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	Fingerprint bool          `yaml:"tls_fingerprint"`
}

// fileConfig matches the CONFIG_FILE layout. YAML is a superset of JSON, so
// one decoder reads both.
type fileConfig struct {
	Port        string       `yaml:"port"`
	Environment string       `yaml:"environment"`
	LogLevel    string       `yaml:"log_level"`
	CatalogFile string       `yaml:"catalog_file"`
	GCPProject  string       `yaml:"gcp_project"`
	SecretName  string       `yaml:"secret_name"`
	API         APIConfig    `yaml:"api"`
	MergePolicy string       `yaml:"merge_policy"`
	Guest       guest.Config `yaml:"guest"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all fields and returns an error if any are malformed.
func Load(ctx context.Context) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	// If CONFIG_FILE is set, load everything from the file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		cfg, err = loadFromFile(configPath)
	} else {
		cfg, err = loadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	// Production keeps the API key out of the environment
	if cfg.Environment == "production" && cfg.API.APIKey == "" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading api key: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON or YAML file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	fc := fileConfig{Guest: guest.Config{Backend: guest.BackendFile, Prefix: "shopsync:"}}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	policy, err := reconcile.ParseMergePolicy(fc.MergePolicy)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        withDefault(fc.Port, DefaultPort),
		Environment: withDefault(fc.Environment, "development"),
		LogLevel:    withDefault(fc.LogLevel, "info"),
		CatalogFile: fc.CatalogFile,
		GCPProject:  fc.GCPProject,
		SecretName:  withDefault(fc.SecretName, DefaultSecretName),
		API:         fc.API,
		MergePolicy: policy,
		Guest:       fc.Guest,
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// loadFromEnv reads configuration from individual environment variables.
func loadFromEnv() (*Config, error) {
	cfg := &Config{
		Port:        envOrDefault("PORT", DefaultPort),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		SecretName:  envOrDefault("SECRET_NAME", DefaultSecretName),
		API: APIConfig{
			BaseURL: os.Getenv("API_BASE_URL"),
			APIKey:  os.Getenv("API_KEY"),
			Timeout: DefaultTimeout,
		},
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("TLS_FINGERPRINT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing TLS_FINGERPRINT: %w", err)
		}
		cfg.API.Fingerprint = b
	}

	policy, err := reconcile.ParseMergePolicy(os.Getenv("MERGE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("parsing MERGE_POLICY: %w", err)
	}
	cfg.MergePolicy = policy

	if cfg.Guest, err = guest.ConfigFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSecretManager fetches the API key from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret_name}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.SecretName)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	c.API.APIKey = strings.TrimSpace(string(result.Payload.GetData()))
	if c.API.APIKey == "" {
		return fmt.Errorf("secret %s is empty", secretName)
	}
	return nil
}

// validate checks that configured values are well-formed.
// API_BASE_URL is optional here; the client requires it, the devapi does not.
func (c *Config) validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid api base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("invalid api base_url %q: want an http(s) URL", c.API.BaseURL)
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
