package config

import (
	"time"
)

// UpstreamKillGrace is how long the runner keeps draining pipes after killing
// a timed-out upstream before giving up on it
const UpstreamKillGrace = 2 * time.Second

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// UpstreamConfig describe el proceso externo que produce el documento de mercado
type UpstreamConfig struct {
	Command string        `yaml:"command" mapstructure:"command"`
	Args    []string      `yaml:"args" mapstructure:"args"`
	WorkDir string        `yaml:"work_dir" mapstructure:"work_dir"`
	Env     []string      `yaml:"env" mapstructure:"env"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Label is how the process is named in error details ("node script")
	Label string `yaml:"label" mapstructure:"label"`
}

// CacheConfig contains snapshot store configuration
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend string        `yaml:"backend" mapstructure:"backend"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Prefix  string        `yaml:"prefix" mapstructure:"prefix"`
	Redis   RedisConfig   `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	Password       string `yaml:"password" mapstructure:"password"`
	DB             int    `yaml:"db" mapstructure:"db"`
	ConnectRetries int    `yaml:"connect_retries" mapstructure:"connect_retries"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int  `yaml:"capacity" mapstructure:"capacity"`
	RefillRate int  `yaml:"refill_rate" mapstructure:"refill_rate"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	Enabled     bool     `yaml:"enabled" mapstructure:"enabled,string"`
	APIKey      string   `yaml:"api_key" mapstructure:"api_key"`
	HeaderName  string   `yaml:"header_name" mapstructure:"header_name"`
	UnauthPaths []string `yaml:"unauth_paths" mapstructure:"unauth_paths"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	AddSource bool   `yaml:"add_source" mapstructure:"add_source"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    45 * time.Second, // must outlive the upstream timeout
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 35 * time.Second,
		},
		Upstream: UpstreamConfig{
			Command: "node",
			Args:    []string{"index.js", "--json"},
			WorkDir: "",
			Timeout: 30 * time.Second,
			Label:   "node script",
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     10 * time.Minute,
			Prefix:  "market:",
			Redis: RedisConfig{
				Addr:           "localhost:6379",
				Password:       "",
				DB:             0,
				ConnectRetries: 3,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   20,
			RefillRate: 1,
		},
		Auth: AuthConfig{
			Enabled:     false,
			APIKey:      "",
			HeaderName:  "X-API-Key",
			UnauthPaths: []string{"/health", "/ready", "/metrics", "/swagger/", "/docs", "/docs/"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
