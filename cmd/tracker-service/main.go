package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/delivery/consumer"
	delivery "golang-price-tracker/internal/tracker/delivery/http"
	_ "golang-price-tracker/internal/tracker/docs"
	"golang-price-tracker/internal/tracker/repository"
	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/internal/tracker/strategy"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/fingerprint"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/metrics"
	"golang-price-tracker/pkg/postgres"
	"golang-price-tracker/pkg/redis"
	"golang-price-tracker/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the tracker service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Tracker Service", logger.Field("name", cfg.App.Name))
	metrics.Init()

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
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
	defer redisClient.Close()

	if err := redisClient.EnsureGroup(ctx, common.RedisStreamProductFetch, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	notifier := telegram.NewNopNotifier()
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Error("Failed to initialize telegram notifier, notifications disabled", logger.ErrorField(err))
			notifier = telegram.NewNopNotifier()
		}
	}

	// Initialize services
	store := repository.NewStore(db.DB)
	fingerprinter := fingerprint.NewMemo(fingerprint.New(), cfg.Tracker.FingerprintCacheTTL, 2*cfg.Tracker.FingerprintCacheTTL)
	windowDays := cfg.Tracker.InsightWindowDays

	ingestSvc := service.NewIngestService(store, fingerprinter, notifier, appLogger, windowDays)
	insightSvc := service.NewInsightService(store, appLogger, windowDays)
	alertSvc := service.NewAlertService(store, appLogger, cfg.Tracker.PendingAlertsLimit)
	scheduleSvc := service.NewScheduleService(store, appLogger)

	registry := strategy.NewRegistry(
		strategy.NewAmazonStrategy(cfg.Scraper, appLogger),
		strategy.NewNoonStrategy(cfg.Scraper, appLogger),
	)
	fetchSvc := service.NewFetchService(cfg, appLogger, redisClient.Client, registry, ingestSvc, notifier)

	redisConsumer := consumer.NewRedisConsumer(cfg, fetchSvc, appLogger)
	redisConsumer.Start(ctx)

	// Nightly insight refresh
	var scheduler *cron.Cron
	if cfg.Tracker.InsightRefreshCron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Tracker.InsightRefreshCron, func() {
			result := insightSvc.RefreshAll(ctx)
			appLogger.Info("Scheduled insight refresh finished",
				logger.IntField("total", result.Total),
				logger.IntField("succeeded", result.Succeeded),
				logger.IntField("failed", len(result.Failed)))
		})
		if err != nil {
			appLogger.Fatal("Invalid insight refresh cron", logger.ErrorField(err))
		}
		scheduler.Start()
	}

	e := delivery.NewServer(appLogger,
		delivery.NewProductHandler(ingestSvc, scheduleSvc, appLogger),
		delivery.NewInsightHandler(insightSvc, appLogger),
		delivery.NewAlertHandler(alertSvc, appLogger),
	)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down tracker service...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	redisConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Tracker service exited")
}

// @title Price Tracker API
// @version 1.0
// @description Ingests marketplace price observations and serves insights and price alerts.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "tracker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-tracker.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing tracker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
