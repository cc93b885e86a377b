package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-delay-dashboard/internal/adapter/artifact"
	httpadapter "github.com/couchcryptid/flight-delay-dashboard/internal/adapter/http"
	"github.com/couchcryptid/flight-delay-dashboard/internal/adapter/modelserver"
	"github.com/couchcryptid/flight-delay-dashboard/internal/config"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dashboard"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
	"github.com/couchcryptid/flight-delay-dashboard/internal/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The table is loaded once up front; there is no partial-data mode.
	loader := dataset.NewLoader(dataset.NewFileSource(cfg.DataPath, cfg.DataSheet), nil, logger, metrics)
	table, err := loader.Load(ctx)
	if err != nil {
		logger.Error("failed to load flight table", "error", err)
		os.Exit(1)
	}

	var (
		classifier domain.Classifier
		modelName  string
	)
	if cfg.UseModelServer() {
		client := modelserver.NewClient(cfg.ModelEndpoint, cfg.ModelTimeout, metrics, logger)
		classifier, modelName = client, client.Name()
		logger.Info("using served model", "endpoint", cfg.ModelEndpoint, "timeout", cfg.ModelTimeout)
	} else {
		model, err := artifact.Load(cfg.ModelArtifactPath)
		if err != nil {
			logger.Error("failed to load model artifact", "path", cfg.ModelArtifactPath, "error", err)
			os.Exit(1)
		}
		classifier, modelName = model, model.Name()
		logger.Info("using model artifact", "path", cfg.ModelArtifactPath, "model", modelName)
	}

	predictor := prediction.NewService(classifier, logger, metrics,
		prediction.WithModelName(modelName),
		prediction.WithDayRange(table.Options().DayRange),
	)
	dash := dashboard.New(loader, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, dash, predictor, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
