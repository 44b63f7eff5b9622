package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_GateThresholds_Defaults(t *testing.T) {
	envVars := []string{
		"GATE_MIN_POSTS_TIMING",
		"GATE_MIN_POSTS_BEST_POST",
		"GATE_MIN_POSTS_WHY",
		"GATE_MIN_POSTS_HASHTAGS",
		"GATE_MIN_POSTS_FREQUENCY",
		"GATE_MIN_POSTS_CAPTIONS",
	}
	for _, key := range envVars {
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 10, cfg.MinPostsPostingTime)
	assert.Equal(t, 5, cfg.MinPostsBestPost)
	assert.Equal(t, 3, cfg.MinPostsWhy)
	assert.Equal(t, 3, cfg.MinPostsHashtags)
	assert.Equal(t, 5, cfg.MinPostsFrequency)
	assert.Equal(t, 3, cfg.MinPostsCaptions)
}

func TestLoad_GateThresholds_FromEnv(t *testing.T) {
	t.Setenv("GATE_MIN_POSTS_TIMING", "20")
	t.Setenv("GATE_MIN_POSTS_BEST_POST", "8")

	cfg := Load()

	assert.Equal(t, 20, cfg.MinPostsPostingTime)
	assert.Equal(t, 8, cfg.MinPostsBestPost)
}

func TestLoad_GenerationParameters(t *testing.T) {
	_ = os.Unsetenv("CHAT_MAX_TOKENS")
	_ = os.Unsetenv("CHAT_PROMPT_VERSION")
	_ = os.Unsetenv("GENERATION_PER_MINUTE")

	cfg := Load()

	assert.Equal(t, 512, cfg.AnswerMaxTokens)
	assert.Equal(t, "chat-v1", cfg.PromptVersion)
	assert.Equal(t, 30, cfg.GenerationPerMinute)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("SNAPSHOT_CACHE_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 256, cfg.SnapshotCacheSize)
}

func TestGetSecret_ReadsFromFile(t *testing.T) {
	_ = os.Unsetenv("DB_PASSWORD")
	secretFile := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(secretFile, []byte("s3cret\n"), 0o600))
	t.Setenv("DB_PASSWORD_FILE", secretFile)

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.DBPassword)
}

func TestGetSecret_EnvWinsOverFile(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("DB_PASSWORD_FILE", "/nonexistent")

	cfg := Load()

	assert.Equal(t, "from-env", cfg.DBPassword)
}
