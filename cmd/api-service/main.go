package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-watchlist/internal/api/config"
	delivery "golang-stock-watchlist/internal/api/delivery/http"
	_ "golang-stock-watchlist/internal/api/docs"
	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/metrics"
	"golang-stock-watchlist/pkg/postgres"
	"golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/sns"
	"golang-stock-watchlist/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the watchlist api service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.Field("name", cfg.App.Name), logger.Field("env", cfg.App.Env))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		appLogger.Fatal("Failed to get sql.DB", logger.ErrorField(err))
	}
	defer sqlDB.Close()

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize SNS
	snsClient, err := sns.NewClient(ctx, sns.Config{
		Region:              cfg.AWS.Region,
		AccessKeyID:         cfg.AWS.AccessKeyID,
		SecretAccessKey:     cfg.AWS.SecretAccessKey,
		TopicARN:            cfg.AWS.SNSTopicARN,
		MaxRequestPerSecond: cfg.AWS.MaxRequestPerSecond,
		CacheTTL:            cfg.AWS.SubscriptionCacheTTL,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize SNS client", logger.ErrorField(err))
	}

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram bot", logger.ErrorField(err))
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	tickerRepo := repository.NewTickerRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	articleRepo := repository.NewNewsArticleRepository(db.DB)
	sentimentRepo := repository.NewArticleTickerSentimentRepository(db.DB)
	syncLogRepo := repository.NewSyncLogRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(redisClient.Client)

	// Initialize services
	reconcileQueue := synchronizer.NewRedisReconcileQueue(redisClient.Client, cfg.Sync.ReconcilePendingTTL, cfg.Redis.StreamMaxLen)
	watchlistSync := synchronizer.NewSynchronizer(userRepo, watchlistRepo, syncLogRepo, snsClient, reconcileQueue, telegramBot, collector, appLogger, synchronizer.Options{})
	alertDispatcher := service.NewAlertDispatcher(snsClient, collector, appLogger, cfg.Alert.PublishTimeout)

	authSvc := service.NewAuthService(sessionRepo, userRepo, appLogger)
	watchlistSvc := service.NewWatchlistService(userRepo, tickerRepo, watchlistRepo, syncLogRepo, watchlistSync, appLogger)
	articleSvc := service.NewArticleService(articleRepo, sentimentRepo, tickerRepo, alertDispatcher, appLogger)
	tickerSvc := service.NewTickerService(tickerRepo, appLogger)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(delivery.RequestContext())
	e.Use(collector.Middleware())
	if len(cfg.Server.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowCredentials: true,
		}))
	}
	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.Server.RequestTimeout))
	}

	// Initialize handlers and routes
	delivery.RegisterRoutes(e, delivery.RouterConfig{
		BasePath:      cfg.Server.BasePath,
		SessionCookie: cfg.Auth.SessionCookie,
		IngestAPIKey:  cfg.Auth.IngestAPIKey,
	}, delivery.Handlers{
		Article:   delivery.NewArticleHandler(articleSvc, appLogger),
		Watchlist: delivery.NewWatchlistHandler(watchlistSvc, appLogger),
		Ticker:    delivery.NewTickerHandler(tickerSvc, appLogger),
		Auth:      delivery.NewAuthHandler(authSvc, cfg.Auth.SessionCookie, appLogger),
		Health: delivery.NewHealthHandler(map[string]delivery.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}, authSvc, appLogger)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	// In-flight sentiment alerts finish before the process exits
	alertDispatcher.Wait()

	appLogger.Info("Server exiting")
}

// @title Stock Watchlist API
// @version 1.0
// @description Watchlist, news sentiment and notification filter API.
// @BasePath /api
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
