package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// Load loads configuration from files and environment variables
func (l *Loader) Load() (*Config, error) {
	// 1. Configure Viper
	l.setupViper()

	// 2. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		// If config.yaml doesn't exist, use only env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Unmarshal on top of the defaults
	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 4. Override with specific env vars
	l.overrideWithEnvVars(config)

	return config, nil
}

// LoadFile loads configuration from an explicit YAML file, still honouring env vars
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.setupViper()
	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.overrideWithEnvVars(config)
	return config, nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")

	l.v.AddConfigPath("./configs")
	l.v.AddConfigPath("../configs")
	l.v.AddConfigPath(".")
	l.v.AddConfigPath("/etc/tbtc-market")

	// Automatic environment variables: TBTC_MARKET_SERVER_PORT, TBTC_MARKET_UPSTREAM_TIMEOUT...
	l.v.AutomaticEnv()
	l.v.SetEnvPrefix("TBTC_MARKET")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.bindEnvVars()
}

// bindEnvVars maps short environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":            "PORT",
		"server.write_timeout":   "SERVER_WRITE_TIMEOUT",
		"upstream.command":       "UPSTREAM_COMMAND",
		"upstream.work_dir":      "UPSTREAM_WORK_DIR",
		"upstream.timeout":       "UPSTREAM_TIMEOUT",
		"upstream.label":         "UPSTREAM_LABEL",
		"cache.enabled":          "CACHE_ENABLED",
		"cache.backend":          "CACHE_BACKEND",
		"cache.ttl":              "CACHE_TTL",
		"cache.redis.addr":       "REDIS_ADDR",
		"cache.redis.password":   "REDIS_PASSWORD",
		"cache.redis.db":         "REDIS_DB",
		"logging.level":          "LOG_LEVEL",
		"logging.format":         "LOG_FORMAT",
		"logging.add_source":     "LOG_ADD_SOURCE",
		"rate_limit.enabled":     "RATE_LIMIT_ENABLED",
		"rate_limit.capacity":    "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate": "RATE_LIMIT_REFILL_RATE",
		"auth.enabled":           "AUTH_ENABLED",
		"auth.api_key":           "API_KEY",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, envVar)
	}
}

// overrideWithEnvVars maneja casos especiales de env vars
func (l *Loader) overrideWithEnvVars(config *Config) {
	// UPSTREAM_ARGS como string separado por comas: "index.js,--json"
	if argsEnv, ok := os.LookupEnv("UPSTREAM_ARGS"); ok {
		var args []string
		for _, arg := range strings.Split(argsEnv, ",") {
			arg = strings.TrimSpace(arg)
			if arg != "" {
				args = append(args, arg)
			}
		}
		config.Upstream.Args = args
	}
}

// LoadForEnvironment loads specific configuration for an environment
func (l *Loader) LoadForEnvironment(environment string) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if environment != "" {
		l.v.SetConfigName(fmt.Sprintf("config.%s", environment))

		if err := l.v.MergeInConfig(); err != nil {
			// Not a critical error if environment file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to merge environment config: %w", err)
			}
		}

		if err := l.v.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal merged config: %w", err)
		}

		l.overrideWithEnvVars(config)
	}

	return config, nil
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
