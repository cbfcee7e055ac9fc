package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hanko-field/configurator/internal/platform/textutil"
)

const (
	envPrefix            = "CONFIGURATOR_"
	defaultEnvFile       = ".env"
	defaultPort          = "8080"
	defaultReadTimeout   = 15 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	defaultIdleTimeout   = 120 * time.Second
	defaultCacheTTL      = 30 * time.Minute
	defaultMaxBodyBytes  = 1 << 20
	defaultMaxParameters = 2000
	defaultEnvironment   = "local"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	NodeMap     NodeMapConfig
	Cache       CacheConfig
	Limits      LimitsConfig
	Telemetry   TelemetryConfig
	Environment string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NodeMapConfig customises the mapping engine.
type NodeMapConfig struct {
	// RulesFile points at an optional YAML path correction table. Empty keeps the built-in table.
	RulesFile   string
	SceneLabels map[string]string
}

// CacheConfig controls the per-product RGB group cache.
type CacheConfig struct {
	TTL time.Duration
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	MaxBodyBytes  int64
	MaxParameters int
}

// TelemetryConfig toggles tracing and metrics export.
type TelemetryConfig struct {
	ProjectID      string
	MetricsEnabled bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	var invalid []string
	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		NodeMap: NodeMapConfig{
			RulesFile:   strings.TrimSpace(stringWithDefault(lookup, "NODEMAP_RULES_FILE", "")),
			SceneLabels: textutil.NormalizeStringMap(mapWithDefault(lookup, "NODEMAP_SCENE_LABELS")),
		},
		Cache: CacheConfig{
			TTL: durationWithDefault(lookup, "CACHE_TTL", defaultCacheTTL),
		},
		Limits: LimitsConfig{
			MaxBodyBytes:  int64(intWithDefault(lookup, "LIMITS_MAX_BODY_BYTES", defaultMaxBodyBytes)),
			MaxParameters: intWithDefault(lookup, "LIMITS_MAX_PARAMETERS", defaultMaxParameters),
		},
		Telemetry: TelemetryConfig{
			ProjectID:      stringWithDefault(lookup, "TELEMETRY_PROJECT_ID", ""),
			MetricsEnabled: boolWithDefault(lookup, "TELEMETRY_METRICS_ENABLED", true),
		},
		Environment: strings.ToLower(stringWithDefault(lookup, "ENVIRONMENT", defaultEnvironment)),
	}

	// Malformed numeric and duration values are reported instead of silently falling back.
	for _, key := range []string{"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "CACHE_TTL"} {
		if raw, ok := lookup(key); ok && raw != "" {
			if _, err := time.ParseDuration(raw); err != nil {
				invalid = append(invalid, envPrefix+key)
			}
		}
	}
	for _, key := range []string{"LIMITS_MAX_BODY_BYTES", "LIMITS_MAX_PARAMETERS"} {
		if raw, ok := lookup(key); ok && raw != "" {
			if _, err := strconv.Atoi(raw); err != nil {
				invalid = append(invalid, envPrefix+key)
			}
		}
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	} else if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Cache.TTL <= 0 {
		missing = append(missing, "Cache.TTL")
	}
	if cfg.Limits.MaxBodyBytes <= 0 {
		missing = append(missing, "Limits.MaxBodyBytes")
	}
	if cfg.Limits.MaxParameters <= 0 {
		missing = append(missing, "Limits.MaxParameters")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// mapWithDefault parses "key=value,key=value" pairs. Keys are lowercased.
func mapWithDefault(lookup func(string) (string, bool), key string) map[string]string {
	values := make(map[string]string)
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return values
	}
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return values
}
