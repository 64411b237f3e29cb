package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/infra/config"
)

func TestLoad_ShouldApplyDefaults(t *testing.T) {
	t.Setenv("PAYWAVE_KORAPAY_SECRET_KEY", "sk_test")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "sqlite3", cfg.Database.Driver)
	require.Equal(t, "X-Provider-Signature", cfg.Webhook.SignatureHeader)
	require.Equal(t, "sk_test", cfg.Webhook.Secret, "webhook secret falls back to the provider secret key")
	require.Equal(t, 3, cfg.Notify.MaxRetry)
	require.Equal(t, time.Second, cfg.Outbox.PollInterval)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paywave.yaml")
	content := []byte(`
server:
  port: "9090"
webhook:
  secret: from-file
  signature_header: X-Korapay-Signature
redis:
  addr: localhost:6379
  lock_ttl: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PAYWAVE_SERVER_PORT", "7070")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "7070", cfg.Server.Port)
	require.Equal(t, "from-file", cfg.Webhook.Secret)
	require.Equal(t, "X-Korapay-Signature", cfg.Webhook.SignatureHeader)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
}

func TestValidate_ShouldRequireWebhookSecret(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Webhook.Secret = ""
	require.ErrorIs(t, cfg.Validate(), config.ErrMissingWebhookSecret)
}
