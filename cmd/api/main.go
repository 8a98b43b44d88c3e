package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/adapters/events"
	"github.com/veriscope/modelaudit/internal/adapters/store"
	"github.com/veriscope/modelaudit/internal/api/handlers"
	"github.com/veriscope/modelaudit/internal/api/routes"
	"github.com/veriscope/modelaudit/internal/auth"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/internal/infrastructure/clients/openai"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	"github.com/veriscope/modelaudit/internal/infrastructure/clients/tavily"
	"github.com/veriscope/modelaudit/internal/infrastructure/observability"
	"github.com/veriscope/modelaudit/internal/investigation"
	"github.com/veriscope/modelaudit/pkg/config"
	"github.com/veriscope/modelaudit/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize Redis client, retrying while the store comes up
	var redisClient *redisclient.Client
	err = retry.DoWithLog(ctx, retry.DefaultConfig(), "redis", func() error {
		var connErr error
		redisClient, connErr = redisclient.NewClient(&cfg.Redis)
		return connErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("redis connection failed, retrying")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")

	// Stores
	criterionStore := store.NewCriterionStore(redisClient)
	modelStore := store.NewModelStore(redisClient)
	assessmentStore := store.NewAssessmentStore(redisClient)
	itemStore := store.NewAssessmentItemStore(redisClient)
	adminUserStore := store.NewAdminUserStore(redisClient)
	auditLogStore := store.NewAuditLogStore(redisClient)
	progressStore := store.NewProgressStore(redisClient, cfg.Investigation.ProgressTTL)

	// Event bus for live progress streams
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	// External providers degrade to mock mode when unconfigured
	var searchProvider providers.SearchProvider
	if cfg.Tavily.APIKey == "" {
		log.Warn().Msg("TAVILY_API_KEY is not set; evidence retrieval runs in mock mode")
	} else {
		tavilyClient, err := tavily.NewClient(&cfg.Tavily)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize search client, running in mock mode")
		} else {
			searchProvider = tavilyClient
		}
	}

	var judgeProvider providers.JudgeProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; judgement runs in mock mode")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize judge client, running in mock mode")
		} else {
			judgeProvider = openaiClient
		}
	}

	// Investigation pipeline
	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), cfg.Investigation.MaxSearchGroups)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid search group configuration")
	}
	retriever := investigation.NewRetriever(searchProvider, cfg.Investigation.CallTimeout)
	engine := investigation.NewEngine(judgeProvider, cfg.Investigation.CallTimeout)
	aggregator := investigation.NewAggregator(judgeProvider, cfg.Investigation.CallTimeout)
	tracker := investigation.NewTracker(progressStore, eventBus)

	orchestrator := investigation.NewOrchestrator(
		planner,
		retriever,
		engine,
		aggregator,
		tracker,
		criterionStore,
		modelStore,
		assessmentStore,
		itemStore,
		auditLogStore,
		metrics,
	)

	// Auth
	authService := auth.NewService(adminUserStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := authService.EnsureAdminUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure)
	criteriaHandler := handlers.NewCriteriaHandler(criterionStore)
	investigationHandler := handlers.NewInvestigationHandler(orchestrator)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentStore, itemStore, criterionStore, progressStore, auditLogStore)
	progressHandler := handlers.NewProgressHandler(progressStore, eventBus, cfg.Investigation.PollInterval)
	modelHandler := handlers.NewModelHandler(modelStore)

	router := routes.NewRouter(
		authHandler,
		criteriaHandler,
		investigationHandler,
		assessmentHandler,
		progressHandler,
		modelHandler,
		authService,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: progress streams stay open for the length of a run.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
