// package config loads application configuration from a .env file, an
// optional YAML file and environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// npb data api
	APIBaseURL    string
	APITimeoutSec int
	APIRPS        float64
	APIBurst      int

	// server
	HTTPPort           int
	TemplatesDir       string
	CORSAllowedOrigins []string

	// sessions
	SessionTTLMinutes int

	// nats
	NatsURL string

	// fetch history
	DatabaseURL           string
	HistoryRetentionHours int

	// api response cache
	RedisURL        string
	CacheTTLSeconds int

	// pdf export
	ChromePath string

	// logging
	LogLevel string
	LogFile  string
}

// fileConfig mirrors the YAML layout accepted by LoadFile.
type fileConfig struct {
	NPBAPI struct {
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RPS            float64 `yaml:"rps"`
		Burst          int     `yaml:"burst"`
	} `yaml:"npb_api"`
	HTTP struct {
		Port               int      `yaml:"port"`
		TemplatesDir       string   `yaml:"templates_dir"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"http"`
	Session struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"session"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	History struct {
		DatabaseURL    string `yaml:"database_url"`
		RetentionHours int    `yaml:"retention_hours"`
	} `yaml:"history"`
	Cache struct {
		RedisURL   string `yaml:"redis_url"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Export struct {
		ChromePath string `yaml:"chrome_path"`
	} `yaml:"export"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:8000",
		APITimeoutSec:         15,
		APIRPS:                5,
		APIBurst:              5,
		HTTPPort:              3100,
		CORSAllowedOrigins:    []string{"*"},
		SessionTTLMinutes:     30,
		HistoryRetentionHours: 24,
		CacheTTLSeconds:       60,
		LogLevel:              "info",
	}
}

// Load reads configuration: defaults, then .env, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads defaults overlaid with a YAML file, without consulting the
// environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.APIBaseURL, fc.NPBAPI.BaseURL)
	setInt(&c.APITimeoutSec, fc.NPBAPI.TimeoutSeconds)
	if fc.NPBAPI.RPS != 0 {
		c.APIRPS = fc.NPBAPI.RPS
	}
	setInt(&c.APIBurst, fc.NPBAPI.Burst)
	setInt(&c.HTTPPort, fc.HTTP.Port)
	setString(&c.TemplatesDir, fc.HTTP.TemplatesDir)
	if len(fc.HTTP.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fc.HTTP.CORSAllowedOrigins
	}
	setInt(&c.SessionTTLMinutes, fc.Session.TTLMinutes)
	setString(&c.NatsURL, fc.NATS.URL)
	setString(&c.DatabaseURL, fc.History.DatabaseURL)
	setInt(&c.HistoryRetentionHours, fc.History.RetentionHours)
	setString(&c.RedisURL, fc.Cache.RedisURL)
	setInt(&c.CacheTTLSeconds, fc.Cache.TTLSeconds)
	setString(&c.ChromePath, fc.Export.ChromePath)
	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFile, fc.Log.File)
	return nil
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getEnv("NPB_API_BASE_URL", c.APIBaseURL)
	c.APITimeoutSec = getEnvInt("NPB_API_TIMEOUT_SECONDS", c.APITimeoutSec)
	c.APIRPS = getEnvFloat("NPB_API_RPS", c.APIRPS)
	c.APIBurst = getEnvInt("NPB_API_BURST", c.APIBurst)
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.TemplatesDir = getEnv("TEMPLATES_DIR", c.TemplatesDir)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}
	c.SessionTTLMinutes = getEnvInt("SESSION_TTL_MINUTES", c.SessionTTLMinutes)
	c.NatsURL = getEnv("NATS_URL", c.NatsURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.HistoryRetentionHours = getEnvInt("HISTORY_RETENTION_HOURS", c.HistoryRetentionHours)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.CacheTTLSeconds = getEnvInt("CACHE_TTL_SECONDS", c.CacheTTLSeconds)
	c.ChromePath = getEnv("CHROME_PATH", c.ChromePath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("npb api base url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("npb api base url %q: scheme must be http or https", c.APIBaseURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("npb api base url %q: missing host", c.APIBaseURL))
	}

	if c.APITimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("npb api timeout must be positive, got %d", c.APITimeoutSec))
	}
	if c.APIRPS <= 0 {
		errs = append(errs, fmt.Errorf("npb api rps must be positive, got %v", c.APIRPS))
	}
	if c.APIBurst < 1 {
		errs = append(errs, fmt.Errorf("npb api burst must be at least 1, got %d", c.APIBurst))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("http port out of range: %d", c.HTTPPort))
	}
	if c.SessionTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %d", c.SessionTTLMinutes))
	}
	if c.HistoryRetentionHours <= 0 {
		errs = append(errs, fmt.Errorf("history retention must be positive, got %d", c.HistoryRetentionHours))
	}
	if c.CacheTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive, got %d", c.CacheTTLSeconds))
	}

	return errors.Join(errs...)
}

// APITimeout returns the outbound request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

// CacheTTL returns how long API responses stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// HistoryRetention returns how long fetch history is kept.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionHours) * time.Hour
}

// SessionTTL returns how long an idle session is kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
