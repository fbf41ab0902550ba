package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBotTokenPrefersSecret(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(secret, []byte(" from-secret \n"), 0o600))
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	require.Equal(t, "from-secret", botToken(secret))
	require.Equal(t, "from-env", botToken(filepath.Join(dir, "missing")))

	require.NoError(t, os.WriteFile(secret, []byte("  "), 0o600))
	require.Equal(t, "from-env", botToken(secret))
}

func TestLoad(t *testing.T) {
	if _, err := os.Stat(tokenSecretPath); err == nil {
		t.Skip("docker secret present")
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/quick_sell")
	t.Setenv("ADMIN_CHAT_ID", "-100200")
	t.Setenv("STATE_TTL", "5m")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.TelegramToken)
	require.Equal(t, "postgres://u:p@db/quick_sell", cfg.DatabaseURL)
	require.EqualValues(t, -100200, cfg.AdminChatID)
	require.Equal(t, 5*time.Minute, cfg.State.TTL)
	require.Equal(t, 0, cfg.Redis.DB)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadWithoutToken(t *testing.T) {
	if _, err := os.Stat(tokenSecretPath); err == nil {
		t.Skip("docker secret present")
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrNoToken)
}
