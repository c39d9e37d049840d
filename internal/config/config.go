package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string
	APIPort   string

	DBPath          string
	MediaRoot       string
	ModulesManifest string

	JWTSecret    string
	AdminUserIDs []int64

	LLMBaseURL string
	LLMAPIKey  string
	LLMTimeout time.Duration

	EmbeddingBaseURL     string
	EmbeddingModelName   string
	EmbeddingTimeout     time.Duration
	EmbeddingMaxRetries  int
	EmbeddingBatchSize   int
	EmbeddingConcurrency int

	VectorBackend    string
	VectorSize       int
	QdrantURL        string
	QdrantCollection string
	IndexTimeout     time.Duration

	ChunkMaxTokens     int
	ChunkOverlapTokens int
	RetrievalTopK      int

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	HistoryCacheTTL time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up a few levels so `go run ./cmd/api` from a subdirectory still finds .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		APIPort:            getEnv("API_PORT", "9000"),
		DBPath:             getEnv("DB_PATH", "./data/lessonplanner.db"),
		MediaRoot:          getEnv("MEDIA_ROOT", "./data/media"),
		ModulesManifest:    getEnv("MODULES_MANIFEST", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-large"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", "qdrant")),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "lesson-index"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
	}
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.LLMBaseURL
	}

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"LLM_TIMEOUT", "60s", &cfg.LLMTimeout},
		{"EMBEDDING_TIMEOUT", "20s", &cfg.EmbeddingTimeout},
		{"INDEX_TIMEOUT", "10s", &cfg.IndexTimeout},
		{"HISTORY_CACHE_TTL", "60s", &cfg.HistoryCacheTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("%s must be a valid duration: %w", d.key, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%s must be greater than 0", d.key)
		}
		*d.dest = v
	}

	ints := []struct {
		key string
		def int
		min int
		dst *int
	}{
		{"VECTOR_SIZE", 3072, 1, &cfg.VectorSize},
		{"EMBEDDING_MAX_RETRIES", 2, 0, &cfg.EmbeddingMaxRetries},
		{"EMBEDDING_BATCH_SIZE", 16, 1, &cfg.EmbeddingBatchSize},
		{"EMBEDDING_CONCURRENCY", 4, 1, &cfg.EmbeddingConcurrency},
		{"CHUNK_MAX_TOKENS", 400, 16, &cfg.ChunkMaxTokens},
		{"CHUNK_OVERLAP_TOKENS", 50, 0, &cfg.ChunkOverlapTokens},
		{"RETRIEVAL_TOP_K", 5, 1, &cfg.RetrievalTopK},
		{"REDIS_DB", 0, 0, &cfg.RedisDB},
	}
	for _, n := range ints {
		v, err := getEnvInt(n.key, n.def)
		if err != nil {
			return nil, err
		}
		if v < n.min {
			return nil, fmt.Errorf("%s must be at least %d", n.key, n.min)
		}
		*n.dst = v
	}
	if cfg.ChunkOverlapTokens >= cfg.ChunkMaxTokens {
		return nil, fmt.Errorf("CHUNK_OVERLAP_TOKENS must be smaller than CHUNK_MAX_TOKENS")
	}

	if cfg.AdminUserIDs, err = parseIDList(getEnv("ADMIN_USER_IDS", "")); err != nil {
		return nil, fmt.Errorf("ADMIN_USER_IDS: %w", err)
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.VectorBackend {
	case "qdrant", "memory":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be qdrant or memory, got %q", cfg.VectorBackend)
	}

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.MediaRoot} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
