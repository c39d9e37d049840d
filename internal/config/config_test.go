package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"LOG_LEVEL", "LOG_FORMAT", "API_PORT", "DB_PATH", "MEDIA_ROOT", "MODULES_MANIFEST",
	"JWT_SECRET", "ADMIN_USER_IDS",
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_TIMEOUT",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_TIMEOUT",
	"EMBEDDING_MAX_RETRIES", "EMBEDDING_BATCH_SIZE", "EMBEDDING_CONCURRENCY",
	"VECTOR_BACKEND", "VECTOR_SIZE", "QDRANT_URL", "QDRANT_COLLECTION", "INDEX_TIMEOUT",
	"CHUNK_MAX_TOKENS", "CHUNK_OVERLAP_TOKENS", "RETRIEVAL_TOP_K",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "HISTORY_CACHE_TTL",
}

// isolateEnv clears every variable Load reads and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range envVars {
		original[key] = os.Getenv(key)
		unsetEnv(key)
	}
	t.Cleanup(func() {
		for key, value := range original {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

// baseEnv sets the minimum required variables with paths inside a temp dir.
func baseEnv(t *testing.T) {
	dir := t.TempDir()
	setEnv("JWT_SECRET", "test-secret")
	setEnv("DB_PATH", filepath.Join(dir, "db", "test.db"))
	setEnv("MEDIA_ROOT", filepath.Join(dir, "media"))
}

func TestLoad(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name:     "defaults with required fields",
			setupEnv: baseEnv,
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorSize == 3072 &&
					cfg.QdrantCollection == "lesson-index" &&
					cfg.VectorBackend == "qdrant" &&
					cfg.RetrievalTopK == 5 &&
					cfg.EmbeddingMaxRetries == 2 &&
					cfg.LLMTimeout == 60*time.Second &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.EmbeddingBaseURL == cfg.LLMBaseURL
			},
		},
		{
			name:     "missing JWT_SECRET",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("VECTOR_SIZE", "768")
				setEnv("VECTOR_BACKEND", "memory")
				setEnv("LOG_LEVEL", "debug")
				setEnv("LOG_FORMAT", "json")
				setEnv("ADMIN_USER_IDS", "1, 2")
				setEnv("EMBEDDING_BASE_URL", "http://localhost:8081")
				setEnv("INDEX_TIMEOUT", "3s")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorSize == 768 &&
					cfg.VectorBackend == "memory" &&
					cfg.LogLevel == slog.LevelDebug &&
					cfg.LogFormat == "json" &&
					len(cfg.AdminUserIDs) == 2 && cfg.AdminUserIDs[1] == 2 &&
					cfg.EmbeddingBaseURL == "http://localhost:8081" &&
					cfg.IndexTimeout == 3*time.Second
			},
		},
		{
			name: "invalid VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("VECTOR_SIZE", "not-a-number")
			},
			wantErr: true,
		},
		{
			name: "zero VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "invalid duration",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("LLM_TIMEOUT", "soon")
			},
			wantErr: true,
		},
		{
			name: "unknown vector backend",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("VECTOR_BACKEND", "pinecone")
			},
			wantErr: true,
		},
		{
			name: "overlap not smaller than max tokens",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("CHUNK_MAX_TOKENS", "64")
				setEnv("CHUNK_OVERLAP_TOKENS", "64")
			},
			wantErr: true,
		},
		{
			name: "invalid admin ids",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("ADMIN_USER_IDS", "1,abc")
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			setupEnv: func(t *testing.T) {
				baseEnv(t)
				setEnv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				unsetEnv(key)
			}
			tt.setupEnv(t)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config check failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesDirectories(t *testing.T) {
	isolateEnv(t)
	baseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cfg.DBPath)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
	if _, err := os.Stat(cfg.MediaRoot); err != nil {
		t.Errorf("media root not created: %v", err)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"1", 1, false},
		{" 1 ,2,, 3", 3, false},
		{"0", 0, true},
		{"-4", 0, true},
	}
	for _, tt := range tests {
		ids, err := parseIDList(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIDList(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(ids) != tt.want {
			t.Errorf("parseIDList(%q) = %v, want %d ids", tt.in, ids, tt.want)
		}
	}
}
