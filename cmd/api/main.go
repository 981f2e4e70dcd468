package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shubhamchhangani/hindu-matrimony/api/routes"
	"github.com/shubhamchhangani/hindu-matrimony/internal/auth"
	"github.com/shubhamchhangani/hindu-matrimony/internal/chats"
	"github.com/shubhamchhangani/hindu-matrimony/internal/events"
	"github.com/shubhamchhangani/hindu-matrimony/internal/posts"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profileimages"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profiles"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/auth/session"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/config"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/db"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/metrics"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/migrate"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/redis"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.Storage, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	maxUpload := cfg.Uploads.MaxUploadBytes()

	authService, err := auth.NewService(auth.NewRepository(dbClient.DB()), sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	profileService, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}
	imageService, err := profileimages.NewService(profileimages.NewRepository(dbClient.DB()), gcsClient, cfg.Storage.ProfileBucket, maxUpload)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile image service", err)
		os.Exit(1)
	}
	postService, err := posts.NewService(posts.NewRepository(dbClient.DB()), gcsClient, cfg.Storage.PostBucket, maxUpload)
	if err != nil {
		logg.Error(context.Background(), "failed to create post service", err)
		os.Exit(1)
	}
	eventService, err := events.NewService(events.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}
	chatService, err := chats.NewService(chats.NewRepository(dbClient.DB()), redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Dependencies{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Storage:         gcsClient,
		SessionVerifier: sessionManager,
		MetricsRegistry: registry,
		HTTPMetrics:     httpMetrics,

		AuthService:         authService,
		ProfileService:      profileService,
		ProfileImageService: imageService,
		PostService:         postService,
		EventService:        eventService,
		ChatService:         chatService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
