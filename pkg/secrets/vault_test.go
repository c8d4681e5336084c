package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

func TestApplyVaultSecrets_Disabled(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{})
	require.NoError(t, err)
	assert.Zero(t, result.Loaded)
}

func TestApplyVaultSecrets_Incomplete(t *testing.T) {
	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestApplyVaultSecrets_KV2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/patientqueue", r.URL.Path)
		assert.Equal(t, "s.token", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "clinic", r.Header.Get("X-Vault-Namespace"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"PQ_TEST_DB_PASSWORD":"hunter2","PQ_TEST_DB_PORT":5433,"PQ_TEST_PRESET":"vault"}}}`))
	}))
	defer server.Close()

	t.Setenv("PQ_TEST_PRESET", "local")
	t.Setenv("PQ_TEST_DB_PASSWORD", "")
	t.Setenv("PQ_TEST_DB_PORT", "")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL + "/",
		Token:     "s.token",
		Namespace: "clinic",
		Mount:     "secret",
		Path:      "/patientqueue",
		KVVersion: 2,
		Timeout:   time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "hunter2", os.Getenv("PQ_TEST_DB_PASSWORD"))
	assert.Equal(t, "5433", os.Getenv("PQ_TEST_DB_PORT"))
	assert.Equal(t, "local", os.Getenv("PQ_TEST_PRESET"))
}

func TestApplyVaultSecrets_KV1Overwrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/kv/queue", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"PQ_TEST_REDIS_ENABLED":true}}`))
	}))
	defer server.Close()

	t.Setenv("PQ_TEST_REDIS_ENABLED", "false")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "s.token",
		Mount:     "kv",
		Path:      "queue",
		KVVersion: 1,
		Timeout:   time.Second,
		Overwrite: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, "true", os.Getenv("PQ_TEST_REDIS_ENABLED"))
}

func TestApplyVaultSecrets_ServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "permission denied", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled: true, Addr: server.URL, Token: "bad", Mount: "secret", Path: "queue", KVVersion: 2, Timeout: time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, int32(fetchRetry.MaxAttempts), calls.Load())
}

func TestVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT_MS", "250")

	cfg := VaultConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}
