package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lessonplanner-ai/internal/auth"
	"lessonplanner-ai/internal/cache"
	"lessonplanner-ai/internal/config"
	"lessonplanner-ai/internal/filestore"
	"lessonplanner-ai/internal/http"
	"lessonplanner-ai/internal/indexer"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
	"lessonplanner-ai/internal/rag"
	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/storage"
	"lessonplanner-ai/internal/vectorstore"
)

// General API information
//
// This API answers lesson planning questions from uploaded teaching material,
// shaped by the philosophy, persona, voice and tone modules a teacher selects.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Lesson Planner AI API
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	sessionRepo := storage.NewSessionRepo(db)
	documentRepo := storage.NewDocumentRepo(db)
	moduleRepo := storage.NewModuleRepo(db)
	roleRepo := storage.NewRoleRepo(db)
	var messageStore storage.MessageStore = storage.NewMessageRepo(db)

	for _, id := range cfg.AdminUserIDs {
		if err := roleRepo.SetRole(ctx, id, storage.RoleAdmin); err != nil {
			log.Fatalf("Failed to bootstrap admin %d: %v", id, err)
		}
	}
	if len(cfg.AdminUserIDs) > 0 {
		slog.Info("Admin roles bootstrapped", "count", len(cfg.AdminUserIDs))
	}

	files, err := filestore.New(cfg.MediaRoot)
	if err != nil {
		log.Fatalf("Failed to open media root: %v", err)
	}
	manifest, err := filestore.LoadManifest(cfg.ModulesManifest)
	if err != nil {
		log.Fatalf("Failed to load modules manifest: %v", err)
	}
	if _, err := files.SyncModules(ctx, moduleRepo, manifest); err != nil {
		log.Fatalf("Failed to sync prompt modules: %v", err)
	}

	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			_ = redisClient.Close()
		}()
		history := cache.NewHistoryCache(redisClient, cfg.HistoryCacheTTL, 0)
		messageStore = cache.NewMessageStore(messageStore, history)
		slog.Info("History cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.HistoryCacheTTL)
	}

	var backend vectorstore.VectorStore
	switch cfg.VectorBackend {
	case "memory":
		backend = vectorstore.NewMemoryStore()
		slog.Warn("Using in-memory vector store, the index is lost on restart")
	default:
		qdrant, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = qdrant.Close()
		}()
		if err := qdrant.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)
		backend = qdrant
	}
	index := vectorstore.NewIndex(backend, cfg.QdrantCollection)

	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.LLMAPIKey,
		cfg.EmbeddingModelName,
		cfg.VectorSize,
		cfg.EmbeddingMaxRetries,
		cfg.EmbeddingTimeout,
	)
	// Only a dimension mismatch is fatal here.
	if vecs, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		slog.Warn("Embedding provider unreachable at startup", "error", err)
	} else if len(vecs) != 1 || len(vecs[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.VectorSize)
	} else {
		slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)
	}

	chunker := indexer.NewChunker(
		indexer.NewTokenizer(indexer.DefaultEncoding, logger),
		cfg.ChunkMaxTokens,
		cfg.ChunkOverlapTokens,
	)
	pipeline := indexer.NewPipeline(chunker, embedder, index, indexer.Options{
		BatchSize:   cfg.EmbeddingBatchSize,
		Concurrency: cfg.EmbeddingConcurrency,
	})

	completer := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
	engine := rag.NewEngine(embedder, index, completer, prompt.NewComposer(""), rag.Options{
		DefaultTopK:       cfg.RetrievalTopK,
		EmbeddingTimeout:  cfg.EmbeddingTimeout,
		IndexTimeout:      cfg.IndexTimeout,
		CompletionTimeout: cfg.LLMTimeout,
	})
	slog.Info("RAG engine initialized", "default_model", llm.ModelGPT4oMini, "top_k", cfg.RetrievalTopK)

	chatService := service.NewChatService(sessionRepo, messageStore, prompt.NewResolver(moduleRepo, files), engine)
	documentService := service.NewDocumentService(documentRepo, files, pipeline)

	router := http.NewRouter(&http.Deps{
		ChatService:     chatService,
		DocumentService: documentService,
		Modules:         moduleRepo,
		Roles:           roleRepo,
		Verifier:        auth.NewVerifier(cfg.JWTSecret),
		DB:              db,
		Index:           index,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "embedding_model", cfg.EmbeddingModelName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
