// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"report-workers/internal/common/camunda"
	"report-workers/internal/common/config"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/observability"
	"report-workers/internal/report"
	frt "report-workers/internal/workers/report/fill-report-template"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := cfg.Validate(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name,
		observability.WithJaegerEndpoint(cfg.Tracing.JaegerEndpoint),
		observability.WithLogger(log),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("observability shutdown failed", zap.Error(err))
		}
	}()

	// --- Init Zeebe Client with retry ---
	zeebeClient, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer func() {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Register report worker ---
	workerCfg, err := frt.ConfigFromApp(cfg)
	if err != nil {
		zapLog.Fatal("failed to configure fill-report-template", zap.Error(err))
	}

	filler := report.NewFiller(
		report.WithLocation(workerCfg.Location),
		report.WithLogger(log),
	)

	handler, err := frt.NewHandler(frt.HandlerOptions{
		Config:        workerCfg,
		Filler:        filler,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create fill-report-template handler", zap.Error(err))
	}

	jobWorker := camunda.StartWorker(zeebeClient.GetClient(), frt.TaskType, config.GetWorkerConfig(cfg, frt.TaskType), handler.Handle, log)

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newServeMux(zeebeClient),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping workers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Health/Metrics server failed", zap.Error(err))
	}

	jobWorker.Stop()
	zapLog.Info("Worker manager stopped gracefully")
}
