package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "TELEGRAM_BOT_TOKEN", "OPENAI_MODEL",
	"OPENAI_EMBEDDING_MODEL", "ASSISTANT_PROMPT", "MAX_TOKENS", "TELEGRAM_ADMIN",
	"ALLOWED_USERNAMES", "USERS_SOURCE", "ALLOWED_USERS_FILE", "STORE_BACKEND",
	"REDIS_URL", "SQLITE_PATH", "HISTORY_LIMIT", "SCORING_CONCURRENCY",
	"HEALTH_ADDR", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_ADMIN", "@root")
}

func missingPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load(missingPath(t))
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, 15, cfg.HistoryLimit)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, UsersEnv, cfg.UsersSource)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 4096, cfg.MaxCompletionTokens)
	assert.Len(t, cfg.Warnings, 1, "missing .env is reported as a warning")
}

func TestLoadRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_ADMIN", "root")

	_, err := Load(missingPath(t))
	assert.Error(t, err)
}

func TestLoadRequiresAdmin(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("TELEGRAM_ADMIN", "")

	_, err := Load(missingPath(t))
	assert.ErrorContains(t, err, "TELEGRAM_ADMIN")
}

func TestLoadAllowedUsernames(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("ALLOWED_USERNAMES", " alice, @bob ,,carol ")

	cfg, err := Load(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, cfg.AllowedUsernames)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("STORE_BACKEND", "etcd")

	_, err := Load(missingPath(t))
	assert.ErrorContains(t, err, "etcd")
}

func TestLoadRedisUsersNeedsRedisStore(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("USERS_SOURCE", "redis")

	_, err := Load(missingPath(t))
	assert.Error(t, err)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("MAX_TOKENS", "lots")

	cfg, err := Load(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.MaxCompletionTokens)
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("OPENAI_MODEL", "from-env")
	const fileOnly = "RATATOSKR_TEST_FILE_ONLY"
	t.Cleanup(func() { _ = os.Unsetenv(fileOnly) })

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nexport OPENAI_MODEL=from-file\n" + fileOnly + "='quoted'\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, "quoted", os.Getenv(fileOnly))
	assert.Empty(t, cfg.Warnings)
}
