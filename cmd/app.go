package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lepko/lepko/internal/application/config"
	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/application/metric"
	"github.com/lepko/lepko/internal/infra/adapters/memory"
	"github.com/lepko/lepko/internal/infra/adapters/postgres"
	"github.com/lepko/lepko/internal/infra/adapters/postgres/repository"
	"github.com/lepko/lepko/internal/infra/ports/http/handlers"
	"github.com/lepko/lepko/internal/infra/ports/http/server"
	"github.com/lepko/lepko/internal/relay"
	"github.com/lepko/lepko/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	keyRepo := repository.NewKeyRepo(dbConn)
	dropRepo := memory.NewDropRepository(ctx, 5*time.Minute)

	keyUsecase := usecase.NewKeyUsecase(keyRepo)

	dropUsecase, err := usecase.NewDropUsecase(dropRepo, cfg.UploadDir, cfg.DropTTL)
	if err != nil {
		slog.Error("init drop storage", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	registry := relay.NewRegistry()

	wsHandler := handlers.NewWebSocketHandler(cfg, registry)
	dropHandler := handlers.NewDropHandler(dropUsecase)
	keyHandler := handlers.NewKeyHandler(cfg, keyUsecase)
	langHandler := handlers.NewLangHandler()
	statsHandler := handlers.NewStatsHandler(keyUsecase, dropUsecase)

	echoSrv := server.New(wsHandler, dropHandler, keyHandler, langHandler, statsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
