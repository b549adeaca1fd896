package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/engine"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/handlers"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/metrics"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/scheduler"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/storage"
)

const serviceName = "claimcraft"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "UK small-claims debt recovery assistant",
	}
	root.AddCommand(serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the claim evaluation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting claim evaluation service",
		zap.String("service", serviceName),
		zap.String("environment", cfg.Environment))

	db, err := storage.Connect(cfg.Database.DSN(), cfg.Database.PoolSize)
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := storage.NewClaimRepository(db, logger)
	if err != nil {
		return err
	}

	evaluator := engine.New(cfg.Rules)
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.NewClaimHandler(repo, evaluator, collector, dates.SystemClock, logger)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sweeper := scheduler.NewSweeper(repo, evaluator, collector, dates.SystemClock, logger)
	if cfg.Scheduler.Enabled {
		if err := sweeper.Start(cfg.Scheduler.SweepCron); err != nil {
			return fmt.Errorf("failed to start deadline sweep: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	if cfg.Scheduler.Enabled {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	logger.Info("Service stopped")
	return nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build()
}
