package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/inkpress/inkpress/internal/api"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/feed"
	"github.com/inkpress/inkpress/internal/listing"
	"github.com/inkpress/inkpress/internal/logger"
	"github.com/inkpress/inkpress/internal/media"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/publish"
	"github.com/inkpress/inkpress/internal/repository"
	"github.com/inkpress/inkpress/internal/sse"
)

func main() {
	// A missing .env file is fine in containerized deployments.
	_ = godotenv.Load()

	configPath := os.Getenv("INKPRESS_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("Error loading config")
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level)
	config.SetLogger(log)
	db.SetLogger(log)
	repository.SetLogger(log)
	media.SetLogger(log)
	auth.SetLogger(log)
	api.SetLogger(log)

	database := db.NewSQLite(cfg.DB.Path)
	if err := database.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}
	defer database.Close()

	store, err := repository.NewDBPostStore(database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating post store")
	}

	var uploader media.Uploader
	if cfg.Media.Bucket != "" {
		uploader = media.NewS3Uploader(
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_ACCESS_KEY_SECRET"),
			cfg.Media.Endpoint,
			cfg.Media.Bucket,
			cfg.Media.PublicBaseURL,
		)
	} else {
		log.Warn().Msg("No media bucket configured, cover uploads will be skipped")
	}

	clients := sse.NewClients()
	listCache := cache.NewPathCache[[]listing.View]()
	invalidate := func(path string) {
		listCache.Invalidate(path)
		clients.Broadcast(path, "changed")
	}

	listSvc := listing.New(store, listCache, cfg.Content.PlaceholderImage, cfg.Content.PostsPerPage, log)
	pipeline := publish.New(
		store,
		uploader,
		invalidate,
		time.Duration(cfg.Media.UploadTimeoutSeconds)*time.Second,
		cfg.Content.FallbackCategory,
		log,
	)

	var provider auth.Provider
	switch cfg.Auth.Provider {
	case config.AuthProviderClerk:
		provider = auth.NewClerkProvider(os.Getenv("CLERK_API"))
	default:
		token := os.Getenv("ADMIN_TOKEN")
		if token == "" {
			log.Warn().Msg("ADMIN_TOKEN not set, admin endpoints are disabled")
		}
		provider = auth.NewTokenProvider(token, model.UserID(cfg.Auth.AdminUser))
	}

	handler := api.NewHandler(
		pipeline,
		store,
		store,
		listSvc,
		editor.NewMemoryDraftStore(),
		clients,
		provider,
		feed.Site{
			Name:        cfg.Site.Name,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
		},
		cfg.Content.FeaturedLimit,
		cfg.Content.RecentLimit,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, provider),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}
