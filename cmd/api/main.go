package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gomind-health/bianca/internal/api/router"
	"github.com/gomind-health/bianca/internal/config"
	"github.com/gomind-health/bianca/internal/conversation"
	"github.com/gomind-health/bianca/internal/gomind"
	"github.com/gomind-health/bianca/internal/observability/metrics"
	"github.com/gomind-health/bianca/internal/webhook"
	"github.com/gomind-health/bianca/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bianca API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := config.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	bedrockClient := conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))

	var llm conversation.LLMClient = bedrockClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		llm = conversation.NewFallbackLLMClient(bedrockClient, gemini, logger.Logger)
	}

	intents := conversation.NewFallbackIntentClassifier(
		conversation.NewLLMIntentClassifier(llm, cfg.BedrockModelID),
		conversation.KeywordIntentClassifier{},
		logger,
	)

	gateway := gomind.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)

	var sessions conversation.SessionStore
	if cfg.UseRedisSessions {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		sessions = conversation.NewRedisSessionStore(redisClient, nil)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = conversation.NewMemorySessionStore()
	}

	var archive *conversation.ArchiveStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		archive = conversation.NewArchiveStore(db)
		logger.Info("transcript archive enabled")
	}

	metricsHandler, conversationMetrics := setupConversationMetrics()

	engine := setupEngine(cfg, gateway, intents, llm, logger)
	service := conversation.NewService(engine, sessions, archive, conversationMetrics, logger)

	webhookHandler := webhook.NewHandler(service, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		WebhookHandler: webhookHandler,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupConversationMetrics builds an isolated registry so tests and future
// binaries never collide on the default registerer.
func setupConversationMetrics() (http.Handler, *metrics.ConversationMetrics) {
	registry := prometheus.NewRegistry()
	m := metrics.NewConversationMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m
}

func setupEngine(cfg *config.Config, gateway conversation.Gateway, intents conversation.IntentClassifier, llm conversation.LLMClient, logger *logging.Logger) *conversation.Engine {
	return conversation.NewEngine(gateway, intents, llm, cfg.BedrockModelID, logger,
		conversation.WithMaxTokens(int32(cfg.BedrockMaxTokens)),
	)
}
