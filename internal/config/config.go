// Package config loads examcoach settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the client and the server.
type Config struct {
	Client ClientConfig
	Server ServerConfig
	Log    LogConfig
}

// ClientConfig holds terminal client configuration.
type ClientConfig struct {
	// ServerURL is the base URL of the examcoach server.
	ServerURL string

	// Timeout bounds a single request. Pro feedback is slow, so this is
	// generous.
	Timeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr   string
	DBPath string // empty means the XDG default

	SessionTTL   time.Duration
	SessionStore string // "memory" or "redis"

	RedisAddr     string
	RedisPassword string

	CORSOrigins []string
}

// LogConfig holds logging configuration. An empty File discards client
// logs; the server always logs to stderr.
type LogConfig struct {
	Level string
	File  string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Client: ClientConfig{
			ServerURL: "http://127.0.0.1:5000",
			Timeout:   2 * time.Minute,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:5000",
			SessionTTL:   30 * time.Minute,
			SessionStore: "memory",
			RedisAddr:    "localhost:6379",
			CORSOrigins:  []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromEnv builds a Config from EXAMCOACH_* environment variables, falling
// back to defaults for unset or unparseable values.
func FromEnv() Config {
	d := DefaultConfig()
	return Config{
		Client: ClientConfig{
			ServerURL: getEnv("EXAMCOACH_SERVER", d.Client.ServerURL),
			Timeout:   getEnvAsDuration("EXAMCOACH_TIMEOUT", d.Client.Timeout),
		},
		Server: ServerConfig{
			Addr:          getEnv("EXAMCOACH_ADDR", d.Server.Addr),
			DBPath:        getEnv("EXAMCOACH_DB", d.Server.DBPath),
			SessionTTL:    getEnvAsDuration("EXAMCOACH_SESSION_TTL", d.Server.SessionTTL),
			SessionStore:  getEnv("EXAMCOACH_SESSION_STORE", d.Server.SessionStore),
			RedisAddr:     getEnv("EXAMCOACH_REDIS_ADDR", d.Server.RedisAddr),
			RedisPassword: getEnv("EXAMCOACH_REDIS_PASSWORD", d.Server.RedisPassword),
			CORSOrigins:   getEnvAsList("EXAMCOACH_CORS_ORIGINS", d.Server.CORSOrigins),
		},
		Log: LogConfig{
			Level: getEnv("EXAMCOACH_LOG_LEVEL", d.Log.Level),
			File:  getEnv("EXAMCOACH_LOG_FILE", d.Log.File),
		},
	}
}

// ValidateClient checks the settings the terminal client needs.
func (c Config) ValidateClient() error {
	u, err := url.Parse(c.Client.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("EXAMCOACH_SERVER must be an http(s) URL, got %q", c.Client.ServerURL)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("EXAMCOACH_TIMEOUT must be positive, got %s", c.Client.Timeout)
	}
	return nil
}

// ValidateServer checks the settings the server needs.
func (c Config) ValidateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("EXAMCOACH_ADDR is required")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("EXAMCOACH_SESSION_TTL must be positive, got %s", c.Server.SessionTTL)
	}
	switch c.Server.SessionStore {
	case "memory":
	case "redis":
		if c.Server.RedisAddr == "" {
			return fmt.Errorf("EXAMCOACH_REDIS_ADDR is required for the redis session store")
		}
	default:
		return fmt.Errorf("unknown session store: %q", c.Server.SessionStore)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
