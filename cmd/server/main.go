package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"briefroom.app/relay/common/id"
	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/common/logger"
	"briefroom.app/relay/common/otel"
	"briefroom.app/relay/core/config"
	"briefroom.app/relay/core/db"
	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/document"
	"briefroom.app/relay/internal/http/middleware"
	httprouter "briefroom.app/relay/internal/http/router"
	"briefroom.app/relay/internal/queue"
	"briefroom.app/relay/internal/service"
	"briefroom.app/relay/internal/store"
	"briefroom.app/relay/internal/synthesis"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "relay starting", "env", cfg.Env, "service", cfg.OTel.ServiceName, "store", cfg.Store.Backend)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	sessions, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open session store", "error", err, "backend", cfg.Store.Backend)
		os.Exit(1)
	}
	defer closeStore()

	events, err := openProducer(ctx, cfg.Events)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	client, err := llm.New(llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err, "provider", cfg.LLM.Provider)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client ready", "provider", cfg.LLM.Provider, "model", client.Model())

	if len(cfg.Documents.AllowedHosts) == 0 {
		slog.WarnContext(ctx, "DOCUMENT_ALLOWED_HOSTS is empty; uploaded documents will not be fetched")
	}
	documents := document.NewAssembler(
		document.NewHTTPFetcher(cfg.Documents.FetchTimeout, cfg.Documents.MaxBytes, cfg.Documents.AllowedHosts),
		document.NewTextExtractor(),
	)

	services := service.NewServices(
		sessions,
		analysis.NewGenerator(client, documents, cfg.LLM.MaxTokens),
		synthesis.NewEngine(client, cfg.LLM.MaxTokens),
		events,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation calls can run for the full LLM timeout.
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func openSessionStore(ctx context.Context, cfg config.Config) (store.SessionStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMongo:
		client, err := store.ConnectMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Store.MongoDatabase).Collection(cfg.Store.MongoCollection)
		slog.InfoContext(ctx, "mongo connected", "database", cfg.Store.MongoDatabase, "collection", cfg.Store.MongoCollection)
		return store.NewMongoStore(coll), func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(closeCtx)
		}, nil

	case config.StoreBackendPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(database)
		if err := pg.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		slog.InfoContext(ctx, "database connected")
		return pg, database.Close, nil

	default:
		slog.WarnContext(ctx, "using in-memory session store; sessions are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func openProducer(ctx context.Context, cfg config.EventsConfig) (queue.Producer, error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "session events disabled (no stream configured)")
		return queue.NoopProducer{}, nil
	}

	client, err := queue.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.RedisStream)
	return queue.NewRedisProducer(client, cfg.RedisStream, slog.Default()), nil
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 ____       _       __
| __ ) _ __(_) ___ / _|_ __ ___   ___  _ __ ___
|  _ \| '__| |/ _ \ |_| '__/ _ \ / _ \| '_ ` + "`" + ` _ \
| |_) | |  | |  __/  _| | | (_) | (_) | | | | | |
|____/|_|  |_|\___|_| |_|  \___/ \___/|_| |_| |_|
`
