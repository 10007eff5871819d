package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	delivery "golang-stock-watchlist/internal/api/delivery/http"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/internal/syncer/config"
	"golang-stock-watchlist/internal/syncer/delivery/consumer"
	"golang-stock-watchlist/internal/syncer/service"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/metrics"
	"golang-stock-watchlist/pkg/postgres"
	"golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/sns"
	"golang-stock-watchlist/pkg/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the watchlist sync service",
	Run:   runServe,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Runs one reconcile sweep and exits",
	Run:   runSweep,
}

type app struct {
	cfg       *config.Config
	logger    *logger.Logger
	registry  *prometheus.Registry
	checks    map[string]delivery.HealthCheck
	reconcile service.ReconcileService
	sweep     service.SweepService
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func bootstrap(ctx context.Context) *app {
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
	a := &app{cfg: cfg, logger: appLogger, checks: map[string]delivery.HealthCheck{}}
	a.closers = append(a.closers, func() { _ = appLogger.Sync() })

	appLogger.Info("Starting Sync Service", zap.String("name", cfg.App.Name))

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
	if sqlDB, err := db.DB.DB(); err == nil {
		a.checks["postgres"] = sqlDB.PingContext
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

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
	a.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	a.closers = append(a.closers, func() { _ = redisClient.Close() })

	if err := redisClient.EnsureGroup(ctx, common.RedisStreamWatchlistReconcile, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

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

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(a.registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	syncLogRepo := repository.NewSyncLogRepository(db.DB)

	// Initialize services
	queue := synchronizer.NewRedisReconcileQueue(redisClient.Client, cfg.Syncer.PendingTTL, cfg.Redis.StreamMaxLen)
	watchlistSync := synchronizer.NewSynchronizer(userRepo, watchlistRepo, syncLogRepo, snsClient, queue, telegramBot, collector, appLogger,
		synchronizer.Options{AutoSubscribe: cfg.Syncer.AutoSubscribe})

	a.reconcile = service.NewReconcileService(cfg, redisClient.Client, watchlistSync, queue, telegramBot, appLogger)
	a.sweep = service.NewSweepService(cfg, userRepo, syncLogRepo, watchlistSync, telegramBot, appLogger)
	return a
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	// Start the reconcile consumer
	redisConsumer := consumer.NewRedisConsumer(a.cfg, a.reconcile, a.logger)
	redisConsumer.Start(ctx)

	// Start the sweep
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		if err := a.sweep.Start(ctx); err != nil {
			a.logger.Error("Sweep service failed", logger.ErrorField(err))
			stop()
		}
	}()

	// Expose metrics and health
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/health", delivery.NewHealthHandler(a.checks).Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(a.registry)))

	go func() {
		addr := fmt.Sprintf("%s:%d", a.cfg.API.Host, a.cfg.API.Port)
		a.logger.Info("Metrics server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", logger.ErrorField(err))
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	a.logger.Info("Shutting down sync service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Metrics server forced to shutdown", logger.ErrorField(err))
	}
	redisConsumer.Stop()
	<-sweepDone

	a.logger.Info("Sync service exiting")
}

func runSweep(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	summary := a.sweep.Sweep(ctx)
	fmt.Printf("reconciled %d users: %d succeeded, %d failed, %d subscribed\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.Subscribed)
}

func main() {
	rootCmd := &cobra.Command{Use: "sync-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-sync.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, sweepCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing sync-service CLI: %s\n", err)
		os.Exit(1)
	}
}
