package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"pratica/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "GRPC_PORT", "SERVICE_B_URL", "LOG_LEVEL", "RESPONDER_TIMEOUT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	caller, err := LoadConfig(domain.CallerLabel, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultCallerPort, caller.HTTP.Port)
	require.Equal(t, ":3000", caller.HTTP.Addr())
	require.Equal(t, "service-a", caller.App.Name)
	require.Equal(t, DefaultResponderURL, caller.Responder.URL)
	require.Equal(t, 10*time.Second, caller.Responder.Timeout)
	require.Equal(t, 15*time.Second, caller.HTTP.ReadTimeout)
	require.False(t, caller.GRPC.Enabled())

	responder, err := LoadConfig(domain.ResponderLabel, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultResponderPort, responder.HTTP.Port)
	require.Equal(t, "service-b", responder.App.Name)
	require.Equal(t, "info", responder.Log.Level)
	require.Equal(t, "json", responder.Log.Format)
}

func TestLoadConfigPortFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "5050")

	cfg, err := LoadConfig(domain.ResponderLabel, nil)
	require.NoError(t, err)
	require.Equal(t, 5050, cfg.HTTP.Port)

	cfg, err = LoadConfig(domain.CallerLabel, nil)
	require.NoError(t, err)
	require.Equal(t, 5050, cfg.HTTP.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVICE_B_URL", "http://service-b:4000")
	t.Setenv("GRPC_PORT", "50051")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RESPONDER_TIMEOUT", "0s")

	cfg, err := LoadConfig(domain.CallerLabel, nil)
	require.NoError(t, err)
	require.Equal(t, "http://service-b:4000", cfg.Responder.URL)
	require.True(t, cfg.GRPC.Enabled())
	require.Equal(t, ":50051", cfg.GRPC.Addr())
	require.Equal(t, "debug", cfg.Log.Level)
	require.Zero(t, cfg.Responder.Timeout)
}

func TestLoadConfigFileAndFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := []byte(`
app:
  env: production
http:
  port: 8081
responder:
  url: http://b.internal:9000
  timeout: 3s
log:
  format: text
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", dir}))

	cfg, err := LoadConfig(domain.CallerLabel, fs)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.App.Env)
	require.Equal(t, 8081, cfg.HTTP.Port)
	require.Equal(t, "http://b.internal:9000", cfg.Responder.URL)
	require.Equal(t, 3*time.Second, cfg.Responder.Timeout)
	require.Equal(t, "text", cfg.Log.Format)

	t.Setenv("PORT", "8082")
	cfg, err = LoadConfig(domain.CallerLabel, fs)
	require.NoError(t, err)
	require.Equal(t, 8082, cfg.HTTP.Port, "environment wins over config file")

	require.NoError(t, fs.Parse([]string{"--port", "8083", "--log-level", "warn"}))
	cfg, err = LoadConfig(domain.CallerLabel, fs)
	require.NoError(t, err)
	require.Equal(t, 8083, cfg.HTTP.Port, "flag wins over environment")
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port out of range": {"PORT": "70000"},
		"bad url":           {"SERVICE_B_URL": "localhost:4000"},
		"negative timeout":  {"RESPONDER_TIMEOUT": "-1s"},
		"port collision":    {"PORT": "4000", "GRPC_PORT": "4000"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(domain.ResponderLabel, nil)
			require.Error(t, err)
		})
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http: [unterminated"), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", dir}))

	_, err := LoadConfig(domain.ResponderLabel, fs)
	require.ErrorContains(t, err, "error reading config file")
}
