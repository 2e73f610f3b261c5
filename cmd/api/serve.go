package main

import (
	"context"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"portal/internal/filetype"
	handlers "portal/internal/http/handler"
	"portal/internal/http/middleware"
	"portal/internal/metrics"
	"portal/internal/otel"
	"portal/internal/service"
	"portal/internal/storage"
)

// multipartSlack covers the multipart envelope around an upload at the size ceiling.
const multipartSlack = 1 << 20

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing_init_failed", zap.Error(err))
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	if len(cfg.Auth.JWTSecret) == 0 {
		log.Warn("jwt_secret_empty", zap.String("hint", "every authenticated route will answer 401"))
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("db_open_failed", zap.Error(err))
		return err
	}
	defer func() { _ = b.close(context.Background()) }()

	if err := b.connect(ctx); err != nil {
		log.Error("db_startup_failed", zap.Error(err))
		return err
	}
	go b.manager.Monitor(ctx, time.Duration(cfg.Database.MonitorIntervalSec)*time.Second)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Error("storage_init_failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return err
	}

	domain, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{service.WithLogger(log), service.WithMetrics(domain)}
	docSvc := service.NewDocumentService(store, b.documents, b.projects, b.companies,
		filetype.NewValidator(cfg.Upload.MaxBytes), svcOpts...)
	projectSvc := service.NewProjectService(b.projects, b.companies, b.documents, store, svcOpts...)
	companySvc := service.NewCompanyService(b.companies, b.projects, svcOpts...)

	limiter := middleware.NewIPRateLimiter(cfg.Upload.RatePerMinute, cfg.Upload.Burst, log)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxBytes) + multipartSlack,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	deps := handlers.Deps{
		DB:            b.manager,
		Companies:     companySvc,
		Projects:      projectSvc,
		Documents:     docSvc,
		JWTSecret:     []byte(cfg.Auth.JWTSecret),
		UploadLimiter: limiter,
		Gatherer:      prometheus.DefaultGatherer,
	}
	if local, ok := store.(*storage.Local); ok {
		deps.Uploads = local.FileSystem()
	}
	handlers.RegisterRoutes(app, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listen", zap.String("addr", ":"+cfg.Port), zap.String("storage", store.Driver()))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		log.Error("http_listen_failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	log.Info("http_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil {
		log.Error("http_shutdown_failed", zap.Error(err))
		return err
	}
	return nil
}
