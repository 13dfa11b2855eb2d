// cmd/report-service/main.go
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"maturity-report/internal/api"
	"maturity-report/internal/common/config"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/observability"
	"maturity-report/internal/pipeline"
	composedelivery "maturity-report/internal/stages/compose-delivery"
	renderdocument "maturity-report/internal/stages/render-document"
	sendreport "maturity-report/internal/stages/send-report"
	validateassessment "maturity-report/internal/stages/validate-assessment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting report service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("renderBackend", cfg.Render.Backend),
		zap.String("deliveryProvider", cfg.Delivery.Provider),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stages ---
	validatorCfg, err := validateassessment.NewConfig(cfg.Report)
	if err != nil {
		zapLog.Fatal("invalid report config", zap.Error(err))
	}
	validator, err := validateassessment.NewService(validateassessment.ServiceDependencies{Logger: log}, validatorCfg)
	if err != nil {
		zapLog.Fatal("failed to create validator", zap.Error(err))
	}

	renderer, err := renderdocument.NewService(renderdocument.ServiceDependencies{Logger: log}, renderdocument.NewConfig(cfg.Render))
	if err != nil {
		zapLog.Fatal("failed to create renderer", zap.Error(err))
	}

	composer, err := composedelivery.NewService(composedelivery.ServiceDependencies{Logger: log}, composedelivery.NewConfig(cfg.Delivery))
	if err != nil {
		zapLog.Fatal("failed to create delivery composer", zap.Error(err))
	}

	sender, err := sendreport.NewService(ctx, sendreport.ServiceDependencies{Logger: log}, sendreport.NewConfig(cfg.Delivery))
	if err != nil {
		zapLog.Fatal("failed to create sender", zap.Error(err))
	}

	reports, err := pipeline.New(pipeline.Dependencies{
		Logger:        log,
		Observability: obs,
		Validator:     validator,
		Renderer:      renderer,
		Composer:      composer,
		Sender:        sender,
	})
	if err != nil {
		zapLog.Fatal("failed to assemble pipeline", zap.Error(err))
	}

	// --- HTTP server ---
	apiServer, err := api.NewServer(api.ServerDependencies{
		Logger:   log,
		Pipeline: reports,
		Ready:    renderer.Ready,
	}, api.Config{MaxBodyBytes: cfg.Server.MaxBodyBytes})
	if err != nil {
		zapLog.Fatal("failed to create api server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      apiServer.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownGrace))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Report service stopped gracefully")
}
