package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kebutuhan-pln/internal/attachment"
	"kebutuhan-pln/internal/config"
	"kebutuhan-pln/internal/database"
	"kebutuhan-pln/internal/handler"
	"kebutuhan-pln/internal/observability"
	"kebutuhan-pln/internal/render"
	"kebutuhan-pln/internal/repository"
	"kebutuhan-pln/internal/router"
	"kebutuhan-pln/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, cfg.Telemetry.ServiceName)
	logger.Info().Msg("starting kebutuhan-pln API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instruments, shutdownTelemetry, err := observability.Init(ctx, cfg.Telemetry, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush telemetry")
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	orderRepo := repository.NewOrderRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	counterRepo := repository.NewCounterRepository(logger)

	attachments := newAttachmentStore(ctx, cfg, logger)

	loc := cfg.Note.Location()
	orderService := service.NewOrderService(
		orderRepo, productRepo, addressRepo, cartRepo, counterRepo, attachments,
		service.OrderServiceConfig{
			NoteUnitCode:          cfg.Note.UnitCode,
			NotePlace:             cfg.Note.Place,
			AllowShippedApprovals: cfg.Approval.AllowShipped,
			Location:              loc,
		},
		logger,
	)
	reportService := service.NewReportService(orderRepo, loc, logger)

	renderer, err := render.New(render.Letterhead{Company: cfg.Note.Company, Unit: cfg.Note.UnitName})
	if err != nil {
		return fmt.Errorf("failed to initialize note renderer: %w", err)
	}

	orderHandler := handler.NewOrderHandler(
		observability.WrapOrderService(orderService, instruments, logger),
		renderer,
		cfg.Attachment.MaxBytes,
		logger,
	)
	reportHandler := handler.NewReportHandler(
		observability.WrapReportService(reportService, instruments, logger),
		logger,
	)

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.New(orderHandler, reportHandler, cfg.Auth.APIKey, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	return serve(ctx, server, logger)
}

// serve runs server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		_ = server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newAttachmentStore prefers S3 and keeps the local directory as fallback.
func newAttachmentStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) attachment.Store {
	fileStore := attachment.NewFileStore(cfg.Attachment.Dir, logger)
	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Attachment.Dir).Msg("using local file system for attachments (S3 disabled)")
		return fileStore
	}

	s3Store, err := attachment.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, cfg.S3.Endpoint, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local file system only")
		return fileStore
	}

	return attachment.NewFallbackStore(s3Store, fileStore, true, logger)
}
