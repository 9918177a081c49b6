package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/studygraph/backend/internal/server/middleware"
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
	"github.com/studygraph/backend/pkg/loader/web"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/query"
	storepgx "github.com/studygraph/backend/pkg/store/pgx"
	"github.com/studygraph/backend/pkg/workflow"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const (
	defaultBaseURL   = "https://openrouter.ai/api/v1"
	defaultChatModel = "meta-llama/llama-3.1-8b-instruct"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := runMigrations(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database url", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	aiClient := newAIClient()

	files := loader.NewFileLoader()
	files.Register(plain.New(), "text", "txt", "md")
	files.Register(pdf.New(), "pdf", "pdf")
	files.Register(pptx.New(), "powerpoint", "pptx")
	files.Register(image.New(aiClient), "image", "png", "jpg", "jpeg", "bmp", "tiff")

	graphStore := storepgx.NewGraphDBStore(conn,
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

	queryClient, err := query.NewQueryClient(query.NewQueryClientParams{
		Store:           graphStore,
		Completions:     aiClient,
		Embeddings:      aiClient,
		TopK:            util.GetEnvInt("QUERY_TOP_K", 5),
		MaxAnswerTokens: util.GetEnvInt("AI_MAX_TOKENS", 2000),
	})
	if err != nil {
		logger.Fatal("Failed to create query client", "err", err)
	}

	controller, err := workflow.NewController(workflow.NewControllerParams{
		Loader:   files,
		Ingestor: graphClient,
		Answerer: queryClient,
		Store:    graphStore,
	})
	if err != nil {
		logger.Fatal("Failed to create workflow controller", "err", err)
	}

	app := &mid.App{
		Controller: controller,
		WebLoader:  web.New(),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "err", v.Error)
				return nil
			}
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		host := util.GetEnvString("HOST", "")
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "host", host, "port", port)
		if err := e.Start(host + ":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// newAIClient builds the completion and embedding client for the
// configured provider. The client is shared by every pipeline, so its
// semaphore caps model traffic process-wide.
func newAIClient() ai.ModelClient {
	provider := util.GetEnvString("AI_PROVIDER", "openai")
	timeout := time.Duration(util.GetEnvInt("AI_REQUEST_TIMEOUT", 0)) * time.Second

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
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ChatModel:  util.GetEnvString("AI_MODEL", defaultChatModel),
			EmbedModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small"),
			EmbedDim:   util.GetEnvInt("AI_EMBED_DIM", 0),

			BaseURL: util.GetEnvString("AI_BASE_URL", defaultBaseURL),
			ApiKey:  util.GetEnv("AI_API_KEY"),

			Temperature: util.GetEnvNumeric("AI_TEMPERATURE", 0.1),
			MaxTokens:   util.GetEnvInt("AI_MAX_TOKENS", 2000),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQUESTS", 15)),
			RequestTimeout:        timeout,
		})
	}
}
