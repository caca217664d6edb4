package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
  rateLimit:
    enabled: true
    requestsPerWindow: 30
    window: 30s
auth:
  jwtSecret: from-file
health:
  timezone: Asia/Singapore
  planFreshnessDays: 5
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("VALKEY_ENABLED", "true")
	t.Setenv("VALKEY_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, 30, cfg.HTTP.RateLimit.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.HTTP.RateLimit.Window)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.AllowedOrigins)
	require.True(t, cfg.Valkey.Enabled)
	require.Equal(t, 5, cfg.Health.PlanFreshnessDays)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)

	loc, err := cfg.Health.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Singapore", loc.String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.JWTSecret = "secret"
		return cfg
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"missing secret":       func(c *Config) { c.Auth.JWTSecret = " " },
		"zero rate window":     func(c *Config) { c.HTTP.RateLimit.Window = 0 },
		"valkey without addr":  func(c *Config) { c.Valkey.Enabled = true },
		"storage without host": func(c *Config) { c.Storage.Enabled = true },
		"bad timezone":         func(c *Config) { c.Health.Timezone = "Mars/Olympus" },
		"zero freshness":       func(c *Config) { c.Health.PlanFreshnessDays = 0 },
		"relative metrics":     func(c *Config) { c.Metrics.Path = "metrics" },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		require.Error(t, cfg.Validate(), name)
	}
}
