package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gestorpro/gestor-api/docs"
	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/cache"
	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/database"
	"github.com/gestorpro/gestor-api/internal/http/handler"
	"github.com/gestorpro/gestor-api/internal/http/middleware"
	"github.com/gestorpro/gestor-api/internal/http/router"
	"github.com/gestorpro/gestor-api/internal/jobs"
	"github.com/gestorpro/gestor-api/internal/logger"
	"github.com/gestorpro/gestor-api/internal/postal"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/service"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

// @title Gestor API
// @version 1.0
// @description Sales pipeline, contacts and receivables for small businesses

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system integrations, paired with the X-Tenant-ID header

const pipelineMetricsTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// secrets come from Key Vault outside development
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db, log)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// reads fall back to the database while Redis is down
			log.Warn("redis unreachable at startup, continuing", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
		cancel()
	} else {
		log.Info("redis not configured, caching disabled")
	}
	appCache := cache.New(redisClient, cfg.Redis.BoardTTLDuration())

	// Repositories
	contactRepo := repository.NewContactRepository(db)
	stageRepo := repository.NewStageRepository(db)
	dealRepo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Services
	contactService := service.NewContactService(contactRepo, log)
	pipelineService := service.NewPipelineService(stageRepo, dealRepo, historyRepo, contactRepo, appCache, cfg.Redis.BoardTTLDuration(), log)
	boardService := service.NewBoardService(pipelineService, log)
	historyService := service.NewHistoryService(dealRepo, quoteRepo, transactionRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, pipelineService, log)
	transactionService := service.NewTransactionService(transactionRepo, pipelineService, log)

	postalClient := postal.NewClient(postal.Config{
		BaseURL:           cfg.Postal.BaseURL,
		Timeout:           cfg.Postal.TimeoutDuration(),
		RequestsPerSecond: cfg.Postal.RequestsPerSecond,
		Burst:             cfg.Postal.Burst,
		CacheTTL:          cfg.Postal.CacheTTLDuration(),
	}, appCache, log)

	handlers := router.Handlers{
		Pipeline: handler.NewPipelineHandler(pipelineService, boardService, log),
		Stage:    handler.NewStageHandler(pipelineService, log),
		Deal:     handler.NewDealHandler(pipelineService, log),
		Contact:  handler.NewContactHandler(contactService, historyService, log),
		Finance:  handler.NewFinanceHandler(quoteService, transactionService, log),
		Address:  handler.NewAddressHandler(postalClient, log),
	}

	rt := router.NewRouter(
		cfg,
		log,
		db,
		appCache,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handlers,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		metricsJob := jobs.NewPipelineMetricsJob(dealRepo, historyRepo, log, pipelineMetricsTimeout)
		if err := scheduler.AddJob(jobs.PipelineMetricsJobName, cfg.Jobs.PipelineMetricsCron, metricsJob.Run); err != nil {
			log.Error("failed to register pipeline metrics job", zap.Error(err))
		} else {
			go scheduler.RunNow(jobs.PipelineMetricsJobName, metricsJob.Run)
			scheduler.Start()
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("server stopped gracefully")
	}

	return nil
}
