package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/studygraph/backend/internal/util"

	"github.com/studygraph/backend/pkg/ai"
	oai "github.com/studygraph/backend/pkg/ai/ollama"
	gai "github.com/studygraph/backend/pkg/ai/openai"
	"github.com/studygraph/backend/pkg/graph"
	"github.com/studygraph/backend/pkg/loader"
	"github.com/studygraph/backend/pkg/loader/image"
	"github.com/studygraph/backend/pkg/loader/pdf"
	"github.com/studygraph/backend/pkg/loader/plain"
	"github.com/studygraph/backend/pkg/loader/pptx"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/logger/console"
	storepgx "github.com/studygraph/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// ingest loads local files into a user's knowledge graph without going
// through the HTTP server. It shares the server's pipeline and schema,
// so a graph built here is served unchanged afterwards.
func main() {
	userID := flag.String("user", "", "user id owning the ingested documents")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *userID == "" || flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s -user <user_id> <file>...\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// GraphAiClient
	provider := util.GetEnvString("AI_PROVIDER", "openai")
	timeout := time.Duration(util.GetEnvInt("AI_REQUEST_TIMEOUT", 0)) * time.Second
	var aiClient ai.ModelClient

	switch provider {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ChatModel:  util.GetEnvString("AI_MODEL", ""),
			EmbedModel: util.GetEnvString("AI_EMBED_MODEL", ""),
			EmbedDim:   util.GetEnvInt("AI_EMBED_DIM", 0),

			BaseURL: util.GetEnv("AI_BASE_URL"),
			ApiKey:  util.GetEnv("AI_API_KEY"),

			Temperature: util.GetEnvNumeric("AI_TEMPERATURE", 0.1),
			MaxTokens:   util.GetEnvInt("AI_MAX_TOKENS", 2000),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQUESTS", 15)),
			RequestTimeout:        timeout,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = client
	default:
		aiClient = gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ChatModel:  util.GetEnvString("AI_MODEL", "meta-llama/llama-3.1-8b-instruct"),
			EmbedModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small"),
			EmbedDim:   util.GetEnvInt("AI_EMBED_DIM", 0),

			BaseURL: util.GetEnvString("AI_BASE_URL", "https://openrouter.ai/api/v1"),
			ApiKey:  util.GetEnv("AI_API_KEY"),

			Temperature: util.GetEnvNumeric("AI_TEMPERATURE", 0.1),
			MaxTokens:   util.GetEnvInt("AI_MAX_TOKENS", 2000),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQUESTS", 15)),
			RequestTimeout:        timeout,
		})
	}

	// Init pgx client
	poolConfig, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to parse database url", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	files := loader.NewFileLoader()
	files.Register(plain.New(), "text", "txt", "md")
	files.Register(pdf.New(), "pdf", "pdf")
	files.Register(pptx.New(), "powerpoint", "pptx")
	files.Register(image.New(aiClient), "image", "png", "jpg", "jpeg", "bmp", "tiff")

	graphStore := storepgx.NewGraphDBStore(pgConn,
		storepgx.WithMaxRetries(util.GetEnvInt("STORE_MAX_RETRIES", 3)),
	)

	graphClient, err := graph.NewGraphClient(graph.NewGraphClientParams{
		Store:          graphStore,
		Completions:    aiClient,
		Embeddings:     aiClient,
		MaxChunkChars:  util.GetEnvInt("INGEST_MAX_CHARS", 6000),
		ParallelChunks: util.GetEnvInt("INGEST_PARALLEL_CHUNKS", 1),
	})
	if err != nil {
		logger.Fatal("Failed to create graph client", "err", err)
	}

	startTime := time.Now()
	failed := 0

	for _, path := range flag.Args() {
		if ctx.Err() != nil {
			logger.Info("Shutdown signal received, stopping")
			break
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read file", "file", path, "err", err)
			failed++
			continue
		}

		text, fileType, err := files.ExtractText(ctx, data, filepath.Base(path))
		if err != nil {
			logger.Error("Failed to extract text", "file", path, "err", err)
			failed++
			continue
		}
		if text == "" {
			logger.Error("No extractable text", "file", path)
			failed++
			continue
		}

		result, err := graphClient.ProcessText(ctx, text, *userID)
		if err != nil {
			logger.Error("Failed to ingest file", "file", path, "err", err)
			failed++
			continue
		}

		logger.Info(
			"File ingested",
			"file", path,
			"type", fileType,
			"chunks", result.ProcessedChunks,
			"entities", result.TotalEntities,
			"relationships", result.TotalRelationships,
		)
	}

	metrics := aiClient.GetMetrics()
	aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
	aiHours := int(aiDuration.Hours())
	aiMinutes := int(aiDuration.Minutes()) % 60
	aiSeconds := int(aiDuration.Seconds()) % 60
	logger.Info(
		"AI Metrics",
		"completion_requests", metrics.CompletionRequests,
		"embedding_requests", metrics.EmbeddingRequests,
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", fmt.Sprintf("%02d:%02d:%02d", aiHours, aiMinutes, aiSeconds),
	)

	processingDuration := time.Since(startTime)
	hours := int(processingDuration.Hours())
	minutes := int(processingDuration.Minutes()) % 60
	seconds := int(processingDuration.Seconds()) % 60
	logger.Info(
		"Processing time",
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)

	if failed > 0 {
		logger.Error("Ingestion finished with failures", "failed", failed, "total", flag.NArg())
		os.Exit(1)
	}
	logger.Info("Ingestion finished", "files", flag.NArg(), "user", *userID)
}
