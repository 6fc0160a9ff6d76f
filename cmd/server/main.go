// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nexoprec/internal/assistant"
	commonaws "nexoprec/internal/common/aws"
	"nexoprec/internal/common/config"
	"nexoprec/internal/common/database"
	"nexoprec/internal/common/logger"
	"nexoprec/internal/common/observability"
	"nexoprec/internal/notify"
	"nexoprec/internal/search"
	"nexoprec/internal/server"
	"nexoprec/internal/storage"
	"nexoprec/internal/store"
	"nexoprec/pkg/templates"
)

const templateCatalogPath = "configs/templates.json"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting nexoprec server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis (optional, published-event cache) ---
	var cache *store.EventCache
	if cfg.Database.Redis.CacheEvents {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		cache = store.NewEventCache(
			redis.GetClient(),
			time.Duration(cfg.Database.Redis.EventTTL)*time.Second,
			log,
		)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch (optional, submission search) ---
	var index *search.SubmissionIndex
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		index = search.NewSubmissionIndex(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Load AWS config (shared by S3 uploads and SES/SNS notifications) ---
	var awsCfg aws.Config
	if cfg.Storage.S3.Enabled || cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		region := cfg.Notifications.AWS.Region
		if region == "" {
			region = cfg.Storage.S3.Region
		}
		awsCfg, err = commonaws.LoadConfig(ctx, region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		zapLog.Info("AWS config loaded", zap.String("region", awsCfg.Region))
	}

	// --- Init S3 uploader (optional, file answers) ---
	var uploader *storage.Uploader
	if cfg.Storage.S3.Enabled {
		uploader = storage.NewUploader(awsCfg, cfg.Storage.S3.Region, cfg.Storage.S3.Bucket, cfg.Storage.S3.BaseURL, log)
		zapLog.Info("S3 uploader initialized", zap.String("bucket", cfg.Storage.S3.Bucket))
	}

	// --- Init assistant (optional, applicant chat) ---
	var assistantSvc *assistant.Service
	if cfg.Assistant.GenAI.APIKey != "" {
		gen, err := assistant.NewGeminiGenerator(ctx, cfg.Assistant.GenAI.APIKey, cfg.Assistant.GenAI.Model)
		if err != nil {
			zapLog.Fatal("gemini client init failed", zap.Error(err))
		}
		assistantSvc = assistant.NewService(gen, log)
		zapLog.Info("Assistant initialized", zap.String("model", gen.Model()))
	} else {
		// Chat still works; every question gets the fallback reply.
		assistantSvc = assistant.NewService(nil, log)
		zapLog.Warn("GENAI_API_KEY not set, assistant replies with fallback only")
	}

	// --- Init notifier ---
	notifier := notify.NewNotifier(awsCfg, cfg.Notifications, log)

	// --- Load template catalog (optional) ---
	var catalog *templates.Catalog
	if _, statErr := os.Stat(templateCatalogPath); statErr == nil {
		catalog, err = templates.LoadCatalog(templateCatalogPath)
		if err != nil {
			zapLog.Fatal("template catalog load failed", zap.Error(err))
		}
		zapLog.Info("Template catalog loaded", zap.Int("templates", len(catalog.Templates)))
	}

	db := pg.GetDB()
	srv := server.New(server.Deps{
		Config:      cfg,
		Events:      store.NewEventStore(db, log),
		Submissions: store.NewSubmissionStore(db, log),
		Chats:       store.NewChatStore(db, log),
		Cache:       cache,
		Index:       index,
		Uploader:    uploader,
		Assistant:   assistantSvc,
		Notifier:    notifier,
		Templates:   catalog,
		Obs:         obs,
		Logger:      log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Metrics and pprof on a separate listener.
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsAddress, nil); err != nil {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
