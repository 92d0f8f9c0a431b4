package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":8080", cfg.Portal.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "policydesk.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
api:
  base_url: https://insure.example.com/api
  timeout: 5s
state_dir: /var/lib/policydesk
portal:
  addr: ":9090"
  secure_cookies: true
log:
  level: debug
`), 0o600))

	t.Setenv("POLICYDESK_PORTAL_ADDR", ":7070")
	t.Setenv("POLICYDESK_API_TIMEOUT", "12s")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://insure.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/var/lib/policydesk", cfg.StateDir)
	assert.Equal(t, ":7070", cfg.Portal.Addr)
	assert.True(t, cfg.Portal.SecureCookies)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("POLICYDESK_SECURE_COOKIES", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(""))
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("POLICYDESK_TEST_ENV_VALUE=from-dotenv\n"), 0o600))
	t.Setenv("POLICYDESK_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("POLICYDESK_TEST_ENV_VALUE"))
	require.NoError(t, LoadEnvFile(p))
	assert.Equal(t, "from-dotenv", os.Getenv("POLICYDESK_TEST_ENV_VALUE"))
}

func TestLog_Build(t *testing.T) {
	t.Parallel()

	l, err := Log{Level: "warn"}.Build()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = Log{Level: "loud"}.Build()
	assert.Error(t, err)
}
