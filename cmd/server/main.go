package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusnet/backend/internal/jobs"
	"github.com/campusnet/backend/internal/metrics"
	"github.com/campusnet/backend/internal/router"
	"github.com/campusnet/backend/pkg/config"
	"github.com/campusnet/backend/pkg/firebase"
	"github.com/campusnet/backend/pkg/logger"
	"github.com/campusnet/backend/pkg/media"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	var verifier firebase.IdentityVerifier
	if firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath); err != nil {
		log.Warn().Err(err).Msg("firebase disabled")
	} else {
		verifier = firebaseApp
	}

	var uploader media.Uploader
	if cfg.CloudinaryCloudName != "" {
		uploader, err = media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.UploadFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init cloudinary")
		}
	} else {
		log.Warn().Msg("cloudinary not configured, uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	e := echo.New()
	router.SetupMiddleware(e, cfg, m, log)
	svcs, err := router.SetupRoutes(ctx, e, router.Deps{
		Config:   cfg,
		DB:       db,
		Verifier: verifier,
		Uploader: uploader,
		Registry: registry,
		Metrics:  m,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	scheduler := jobs.NewScheduler(svcs.Notifications, svcs.Content, cfg.NotificationRetention, m, log)
	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop()()

	log.Info().Msg("server exited cleanly")
}
