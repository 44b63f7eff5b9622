package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	LLMURL     string
	LLMModel   string
	LLMTimeout int

	StatsProviderURL     string
	StatsProviderTimeout int

	PromptVersion   string
	AnswerMaxTokens int

	SnapshotCacheSize   int
	SnapshotCacheTTLMin int

	GenerationPerMinute int

	MinPostsPostingTime int
	MinPostsBestPost    int
	MinPostsWhy         int
	MinPostsHashtags    int
	MinPostsFrequency   int
	MinPostsCaptions    int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "insight-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "insight_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "insight_password"),
		DBName:     getEnv("DB_NAME", "insight_db"),

		LLMURL:     getEnv("LLM_URL", "http://llm-gateway:11434"),
		LLMModel:   getEnv("LLM_MODEL", "gemma3:4b"),
		LLMTimeout: getEnvInt("LLM_TIMEOUT_SECONDS", 60),

		StatsProviderURL:     getEnv("STATS_PROVIDER_URL", "http://stats-provider:8080"),
		StatsProviderTimeout: getEnvInt("STATS_PROVIDER_TIMEOUT_SECONDS", 10),

		PromptVersion:   getEnv("CHAT_PROMPT_VERSION", "chat-v1"),
		AnswerMaxTokens: getEnvInt("CHAT_MAX_TOKENS", 512),

		SnapshotCacheSize:   getEnvInt("SNAPSHOT_CACHE_SIZE", 256),
		SnapshotCacheTTLMin: getEnvInt("SNAPSHOT_CACHE_TTL_MINUTES", 5),

		GenerationPerMinute: getEnvInt("GENERATION_PER_MINUTE", 30),

		// Hand-tuned sufficiency thresholds; kept configurable because the
		// original derivation is not recoverable.
		MinPostsPostingTime: getEnvInt("GATE_MIN_POSTS_TIMING", 10),
		MinPostsBestPost:    getEnvInt("GATE_MIN_POSTS_BEST_POST", 5),
		MinPostsWhy:         getEnvInt("GATE_MIN_POSTS_WHY", 3),
		MinPostsHashtags:    getEnvInt("GATE_MIN_POSTS_HASHTAGS", 3),
		MinPostsFrequency:   getEnvInt("GATE_MIN_POSTS_FREQUENCY", 5),
		MinPostsCaptions:    getEnvInt("GATE_MIN_POSTS_CAPTIONS", 3),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
