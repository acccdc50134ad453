package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
upstream:
  command: /usr/local/bin/node
  args: ["market.js", "--json"]
  timeout: 10s
cache:
  backend: redis
  redis:
    addr: redis:6379
`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/usr/local/bin/node", cfg.Upstream.Command)
	assert.Equal(t, []string{"market.js", "--json"}, cfg.Upstream.Args)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)

	// Valores no presentes en el archivo conservan el default
	assert.Equal(t, "node script", cfg.Upstream.Label)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 3, cfg.Cache.Redis.ConnectRetries)
}

func TestLoadFile_EnvVarsTakePrecedence(t *testing.T) {
	path := writeConfigFile(t, `
upstream:
  timeout: 10s
`)
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("PORT", "8181")
	t.Setenv("UPSTREAM_ARGS", "index.js, --json ,--pretty")

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, []string{"index.js", "--json", "--pretty"}, cfg.Upstream.Args)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Staging")
	assert.Equal(t, "staging", GetEnvironment())

	t.Setenv("ENV", "PRODUCTION")
	assert.Equal(t, "production", GetEnvironment())
}
