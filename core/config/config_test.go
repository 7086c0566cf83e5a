package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STREAMPAY_API_BASE_URL", "https://api.example.com")
	t.Setenv("STREAMPAY_RELAY_URL", "wss://relay.example.com/ws")
}

func TestLoad(t *testing.T) {
	t.Run("reads environment with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
		assert.Equal(t, "wss://relay.example.com/ws", cfg.RelayURL)
		assert.Equal(t, uint32(18), cfg.TokenDecimals)
		assert.Equal(t, int64(20), cfg.GasMarginPercent)
		assert.Equal(t, time.Second, cfg.ReconnectBaseDelay)
		assert.Equal(t, 5, cfg.MaxReconnectAttempts)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("STREAMPAY_TOKEN_DECIMALS", "6")
		t.Setenv("STREAMPAY_RECONNECT_BASE_DELAY", "250ms")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, uint32(6), cfg.TokenDecimals)
		assert.Equal(t, 250*time.Millisecond, cfg.ReconnectBaseDelay)
	})

	t.Run("missing required fields fail", func(t *testing.T) {
		t.Setenv("STREAMPAY_API_BASE_URL", "")
		t.Setenv("STREAMPAY_RELAY_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed url fails", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("STREAMPAY_API_BASE_URL", "not a url")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("file values win over environment", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("STREAMPAY_GAS_MARGIN_PERCENT", "20")

		path := writeConfig(t, "relay_url: wss://other.example.com/ws\ngas_margin_percent: 50\n")
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "wss://other.example.com/ws", cfg.RelayURL)
		assert.Equal(t, int64(50), cfg.GasMarginPercent)
		assert.Equal(t, "https://api.example.com", cfg.APIBaseURL, "unset file fields keep environment values")
	})

	t.Run("missing file fails", func(t *testing.T) {
		setRequiredEnv(t)
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		setRequiredEnv(t)
		_, err := LoadFile(writeConfig(t, "relay_url: [broken"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := Config{
		APIBaseURL: "https://api.example.com",
		RelayURL:   "wss://relay.example.com/ws",
	}

	t.Run("negative gas margin", func(t *testing.T) {
		cfg := base
		cfg.GasMarginPercent = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative reconnect attempts", func(t *testing.T) {
		cfg := base
		cfg.MaxReconnectAttempts = -1
		assert.Error(t, cfg.Validate())
	})
}
