package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDGAEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DGA_AUTH_URL", "https://auth.example/validate")
	t.Setenv("DGA_API_URL", "https://api.example/deproc")
	t.Setenv("DGA_NOTI_API_URL", "https://api.example/notify")
	t.Setenv("DGA_CONSUMER_KEY", "ckey")
	t.Setenv("DGA_AGENT_ID", "agent")
	t.Setenv("DGA_CONSUMER_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setDGAEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8070", cfg.Port)
	assert.Equal(t, "/test5/api", cfg.APIPrefix)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.DGA.Timeout)
	assert.Equal(t, "v1", cfg.DGA.Contract.Version)
	assert.Equal(t, time.Duration(0), cfg.TokenCacheTTL)
	assert.False(t, cfg.ExportEnabled)
}

func TestLoadLegacyVariableNames(t *testing.T) {
	setDGAEnv(t)
	t.Setenv("DGA_CONSUMER_KEY", "")
	t.Setenv("DGA_AGENT_ID", "")
	t.Setenv("DGA_CONSUMER_SECRET", "")
	t.Setenv("CONSUMER_KEY", "legacy-key")
	t.Setenv("DGA_AGENT_ID_AUTH", "legacy-agent")
	t.Setenv("CONSUMER_SECRET", "legacy-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.DGA.ConsumerKey)
	assert.Equal(t, "legacy-agent", cfg.DGA.AgentID)
	assert.Equal(t, "legacy-secret", cfg.DGA.ConsumerSecret)
}

func TestLoadRejectsBadValues(t *testing.T) {
	setDGAEnv(t)
	t.Setenv("DGA_AUTH_URL", "")
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DGA_AUTH_URL must be set")
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoadContractVersion(t *testing.T) {
	setDGAEnv(t)
	t.Setenv("DGA_CONTRACT_VERSION", "v2")
	t.Setenv("DGA_HTTP_TIMEOUT", "3s")
	t.Setenv("API_PREFIX", "/api/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "AppId", cfg.DGA.Contract.AppIDKey)
	assert.Equal(t, 3*time.Second, cfg.DGA.Timeout)
	assert.Equal(t, "/api", cfg.APIPrefix)

	t.Setenv("DGA_CONTRACT_VERSION", "v7")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRequiresNotificationURL(t *testing.T) {
	setDGAEnv(t)
	t.Setenv("DGA_NOTI_API_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DGA_NOTI_API_URL must be set")
}
