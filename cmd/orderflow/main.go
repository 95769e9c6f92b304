package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orderflow/internal/config"
	"orderflow/internal/handler"
	"orderflow/internal/kafka"
	"orderflow/internal/logger"
	"orderflow/internal/mailer"
	"orderflow/internal/metrics"
	"orderflow/internal/router"
	"orderflow/internal/scheduler"
	"orderflow/internal/service"
	"orderflow/internal/storage"
	"orderflow/pkg/observability"
)

const serviceName = "orderflow"

func main() {
	logr := logger.NewLogger()

	if err := godotenv.Load(); err != nil {
		logr.Info("no .env file loaded", "err", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	metrics.Init()

	ctx := context.Background()

	// Tracing is optional; without a collector endpoint spans stay local no-ops.
	if endpoint := os.Getenv("ORDERFLOW_OTLP_ENDPOINT"); endpoint != "" {
		tracerShutdown, err := observability.NewTracerProvider(ctx, serviceName, endpoint, logr)
		if err != nil {
			logr.Error("failed to initialize tracer provider", "error", err)
			os.Exit(1)
		}
		defer tracerShutdown()
	}

	loc, err := time.LoadLocation(cfg.Automation.Timezone)
	if err != nil {
		logr.Error("invalid business timezone", "timezone", cfg.Automation.Timezone, "error", err)
		os.Exit(1)
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		logr.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	sqlxDB := storage.NewSQLXFromPool(dbPool)
	defer sqlxDB.Close()

	ruleStore := storage.NewPostgresRuleStorage(dbPool)
	orderStore := storage.NewPostgresOrderStorage(dbPool)
	attemptStore := storage.NewPostgresAttemptStorage(sqlxDB)

	dispatcher := mailer.NewSMTPMailer(cfg.SMTP, logr)
	notifier := service.NewNotifier(attemptStore, dispatcher, loc, logr)

	var events service.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewStatusEventProducer(cfg.Kafka, logr)
		if err != nil {
			logr.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		events = producer
	}

	engine := service.NewAutomationEngine(ruleStore, orderStore, notifier, events, cfg.Automation, loc, logr)
	healthSvc := service.NewHealthService(ruleStore)

	automationHandler := handler.NewAutomationHandler(ruleStore, attemptStore, logr)
	healthHandler := handler.NewHealthHandler(healthSvc, logr)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.NewRouter(automationHandler, healthHandler),
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if cfg.Automation.Enabled {
		sched := scheduler.New(engine, cfg.Automation.Interval, logr)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Start(runCtx)
		}()
	} else {
		logr.Info("automation disabled, running HTTP surface only")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logr.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("HTTP server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logr.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	wg.Wait()
	logr.Info("service shut down gracefully")
}
