// Package config provides application-wide configuration.
// Values come from built-in defaults, then an optional YAML file, then env vars.
// All fields have safe defaults so the binary runs locally without any setup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport names accepted by Config.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Log formats accepted by Config.LogFormat.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime configuration for logoguard.
type Config struct {
	// Image validation
	HTTPTimeout  time.Duration `yaml:"http_timeout"`   // LOGOGUARD_HTTP_TIMEOUT, default: 10s
	MaxBodyBytes int64         `yaml:"max_body_bytes"` // LOGOGUARD_MAX_BODY_BYTES, default: 10 MiB
	MaxPixels    int64         `yaml:"max_pixels"`     // LOGOGUARD_MAX_PIXELS, default: 40M
	Decode       bool          `yaml:"decode"`         // LOGOGUARD_DECODE, default: true

	// Logging (always stderr)
	LogLevel  string `yaml:"log_level"`  // LOGOGUARD_LOG_LEVEL, default: "info"
	LogFormat string `yaml:"log_format"` // LOGOGUARD_LOG_FORMAT, default: "json"

	// Transport
	Transport string `yaml:"transport"` // LOGOGUARD_TRANSPORT, default: "stdio"
	HTTPAddr  string `yaml:"http_addr"` // LOGOGUARD_HTTP_ADDR, default: "127.0.0.1:8080"

	// HTTP transport auth; both empty means the HTTP endpoints are open.
	JWTSecret  string `yaml:"jwt_secret"`   // LOGOGUARD_JWT_SECRET
	APIKeyHash string `yaml:"api_key_hash"` // LOGOGUARD_API_KEY_HASH (bcrypt)

	// Optional sinks
	AuditDBPath  string `yaml:"audit_db"`      // LOGOGUARD_AUDIT_DB: empty disables the audit trail
	OTLPEndpoint string `yaml:"otlp_endpoint"` // OTEL_EXPORTER_OTLP_ENDPOINT: empty disables trace export
}

const (
	envKeyHTTPTimeout  = "LOGOGUARD_HTTP_TIMEOUT"
	envKeyMaxBodyBytes = "LOGOGUARD_MAX_BODY_BYTES"
	envKeyMaxPixels    = "LOGOGUARD_MAX_PIXELS"
	envKeyDecode       = "LOGOGUARD_DECODE"
	envKeyLogLevel     = "LOGOGUARD_LOG_LEVEL"
	envKeyLogFormat    = "LOGOGUARD_LOG_FORMAT"
	envKeyTransport    = "LOGOGUARD_TRANSPORT"
	envKeyHTTPAddr     = "LOGOGUARD_HTTP_ADDR"
	envKeyJWTSecret    = "LOGOGUARD_JWT_SECRET"
	envKeyAPIKeyHash   = "LOGOGUARD_API_KEY_HASH"
	envKeyAuditDB      = "LOGOGUARD_AUDIT_DB"
	envKeyOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

const (
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultMaxPixels    = 40_000_000
	DefaultHTTPAddr     = "127.0.0.1:8080"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPTimeout:  DefaultHTTPTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		MaxPixels:    DefaultMaxPixels,
		Decode:       true,
		LogLevel:     "info",
		LogFormat:    LogFormatJSON,
		Transport:    TransportStdio,
		HTTPAddr:     DefaultHTTPAddr,
	}
}

// Load builds the configuration. path may be empty, in which case no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive, got %s", ErrInvalidConfig, c.HTTPTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("%w: max_pixels must be positive, got %d", ErrInvalidConfig, c.MaxPixels)
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatConsole:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Transport == TransportHTTP && c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr is required for the http transport", ErrInvalidConfig)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.LogLevel = envOr(envKeyLogLevel, cfg.LogLevel)
	cfg.LogFormat = envOr(envKeyLogFormat, cfg.LogFormat)
	cfg.Transport = envOr(envKeyTransport, cfg.Transport)
	cfg.HTTPAddr = envOr(envKeyHTTPAddr, cfg.HTTPAddr)
	cfg.JWTSecret = envOr(envKeyJWTSecret, cfg.JWTSecret)
	cfg.APIKeyHash = envOr(envKeyAPIKeyHash, cfg.APIKeyHash)
	cfg.AuditDBPath = envOr(envKeyAuditDB, cfg.AuditDBPath)
	cfg.OTLPEndpoint = envOr(envKeyOTLPEndpoint, cfg.OTLPEndpoint)

	if v := os.Getenv(envKeyHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKeyHTTPTimeout, err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv(envKeyMaxBodyBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKeyMaxBodyBytes, err)
		}
		cfg.MaxBodyBytes = n
	}
	if v := os.Getenv(envKeyMaxPixels); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKeyMaxPixels, err)
		}
		cfg.MaxPixels = n
	}
	if v := os.Getenv(envKeyDecode); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKeyDecode, err)
		}
		cfg.Decode = b
	}
	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
