package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meditation_notification_service/internal/app"
	"meditation_notification_service/internal/infra/config"
	idb "meditation_notification_service/internal/infra/database"
	"meditation_notification_service/internal/infra/httpapi"
	"meditation_notification_service/internal/infra/logger"
	irealtime "meditation_notification_service/internal/infra/realtime"
	"meditation_notification_service/internal/infra/scheduler"
	"meditation_notification_service/internal/infra/webpush"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	if cfg.SchemaFile != "" {
		if err := idb.ApplySchema(db, cfg.SchemaFile); err != nil {
			log.Fatalf("FATAL: Could not apply database schema: %v", err)
		}
		log.Infof("Database schema applied from %s", cfg.SchemaFile)
	}

	// Initialize Redis for realtime broadcasts
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// Broadcasts are best-effort, so a missing Redis only degrades them.
		log.Warnf("Redis connection failed, realtime broadcasts will be dropped: %v", err)
	}
	defer rdb.Close()

	// Initialize Repositories and collaborators
	notifRepo := idb.NewPostgresNotificationRepository(db)
	subsRepo := idb.NewPostgresSubscriptionRepository(db)
	resolver := idb.NewPostgresAudienceResolver(db)
	pushSender := webpush.NewHTTPSender(cfg.PushSendTimeout)
	broadcaster := irealtime.NewRedisBroadcaster(rdb)
	log.Info("Repositories and channel senders initialized.")

	// Initialize DispatchService
	dispatchService := app.NewDispatchService(
		notifRepo,
		subsRepo,
		resolver,
		pushSender,
		broadcaster,
		cfg.BroadcastChannel,
		log,
	)
	log.Info("Dispatch service initialized.")

	// Initialize DispatchScheduler
	dispatchScheduler := scheduler.NewDispatchScheduler(dispatchService, log, cfg.CronSpecDispatch, cfg.DispatchTimeout)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start dispatch scheduler: %v", err)
	}

	// Initialize HTTP server (manual trigger, health, metrics)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewServer(dispatchService, log).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 15*time.Second,
	}
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	log.Info("Application setup complete. Scheduler and HTTP server are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	dispatchScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	log.Info("Application shut down gracefully.")
}
