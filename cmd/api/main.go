package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MrJamesThe3rd/finsight/internal/config"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/health"
	healthStore "github.com/MrJamesThe3rd/finsight/internal/health/store"
	finsightHttp "github.com/MrJamesThe3rd/finsight/internal/http"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	healthHandler "github.com/MrJamesThe3rd/finsight/internal/http/health"
	insightHandler "github.com/MrJamesThe3rd/finsight/internal/http/insight"
	ledgerHandler "github.com/MrJamesThe3rd/finsight/internal/http/ledger"
	processingHandler "github.com/MrJamesThe3rd/finsight/internal/http/processing"
	taskHandler "github.com/MrJamesThe3rd/finsight/internal/http/task"
	trendHandler "github.com/MrJamesThe3rd/finsight/internal/http/trend"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	insightStore "github.com/MrJamesThe3rd/finsight/internal/insight/store"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/finsight/internal/ledger/store"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finsight/internal/matching/store"
	"github.com/MrJamesThe3rd/finsight/internal/processing"
	"github.com/MrJamesThe3rd/finsight/internal/signal"
	"github.com/MrJamesThe3rd/finsight/internal/task"
	taskStore "github.com/MrJamesThe3rd/finsight/internal/task/store"
	"github.com/MrJamesThe3rd/finsight/internal/trend"
	trendStore "github.com/MrJamesThe3rd/finsight/internal/trend/store"
	"github.com/MrJamesThe3rd/finsight/internal/warning"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		entries = ledgerStore.New(db)

		ledgerService     = ledger.NewService(entries)
		insightService    = insight.NewService(insightStore.New(db))
		taskService       = task.NewService(taskStore.New(db), insightService)
		healthCalculator  = health.NewCalculator(entries, healthStore.New(db))
		trendEngine       = trend.NewEngine(entries, trendStore.New(db))
		signalEngine      = signal.NewEngine(entries, insightService)
		warningSystem     = warning.NewSystem(entries, insightService)
		importService     = importer.NewService()
		matchingService   = matching.NewService(matchingStore.New(db))
		processingMetrics = processing.NewMetrics(registry)
		pipeline          = processing.NewPipeline(healthCalculator, trendEngine, signalEngine, warningSystem,
			processing.WithPipelineMetrics(processingMetrics),
		)
		processingService = processing.NewService(entries, pipeline, processing.NewMemoryJobStore(),
			processing.WithConcurrency(cfg.Processing.Concurrency),
			processing.WithUserTimeout(cfg.Processing.UserTimeout),
			processing.WithMetrics(processingMetrics),
		)
	)

	router := finsightHttp.New(finsightHttp.Handlers{
		Health:     healthHandler.NewHandler(healthCalculator),
		Trends:     trendHandler.NewHandler(trendEngine),
		Insights:   insightHandler.NewHandler(insightService, signalEngine, warningSystem),
		Tasks:      taskHandler.NewHandler(taskService),
		Ledger:     ledgerHandler.NewHandler(ledgerService, importService, matchingService),
		Processing: processingHandler.NewHandler(processingService, cfg.Auth.AdminUsers),
	}, finsightHttp.Options{
		Auth: auth.Config{
			Enabled:    cfg.Auth.Enabled,
			Secret:     cfg.Auth.Secret,
			DemoUserID: cfg.Auth.DemoUserID,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        registry,
	})

	var scheduler *processing.Scheduler

	if cfg.Processing.Enabled {
		scheduler = processing.NewScheduler(processingService, cfg.Processing.JobRetention)
		if err := scheduler.Start(cfg.Processing.DailySchedule, cfg.Processing.WeeklySchedule); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "port", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
