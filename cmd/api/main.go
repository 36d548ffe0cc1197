package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/theodesde/retrohunt-app/internal/feed"
	"github.com/theodesde/retrohunt-app/internal/handlers"
	"github.com/theodesde/retrohunt-app/internal/mailrelay"
	"github.com/theodesde/retrohunt-app/internal/platform/config"
	"github.com/theodesde/retrohunt-app/internal/platform/observability"
	"github.com/theodesde/retrohunt-app/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	directory := services.NewDirectoryService()

	feedClient, err := feed.NewClient(cfg.Feed.URL, feed.WithTimeout(cfg.Feed.Timeout))
	if err != nil {
		logger.Fatal("failed to initialise feed client", zap.Error(err))
	}
	refresher := newDirectoryRefresher(feedClient, directory, cfg.Feed.HomeCountry)

	feedLogger := logger.Named("feed")
	if count, err := refresher.Refresh(ctx); err != nil {
		// The process still starts: /readyz stays red until a refresh
		// succeeds.
		feedLogger.Error("initial feed load failed", zap.Error(err))
	} else {
		feedLogger.Info("feed loaded", zap.Int("records", count))
	}

	mapView := mapViewFromConfig(cfg.Map)
	drawerGeom := services.DrawerGeometry{
		MinHeightPx:     cfg.Drawer.MinHeightPx,
		MaxFraction:     cfg.Drawer.MaxFraction,
		SnapThresholdPx: cfg.Drawer.SnapThreshold,
	}

	var suggestionService services.SuggestionService
	if cfg.Mail.ServiceID != "" && cfg.Mail.TemplateID != "" && cfg.Mail.PublicKey != "" {
		relay, err := mailrelay.NewClient(cfg.Mail.Endpoint, mailrelay.Credentials{
			ServiceID:  cfg.Mail.ServiceID,
			TemplateID: cfg.Mail.TemplateID,
			PublicKey:  cfg.Mail.PublicKey,
		}, mailrelay.WithTimeout(cfg.Mail.Timeout))
		if err != nil {
			logger.Fatal("failed to initialise mail relay", zap.Error(err))
		}
		suggestionLogger := logger.Named("suggestion")
		suggestionService, err = services.NewSuggestionService(services.SuggestionServiceDeps{
			Relay:       relay,
			HomeCountry: cfg.Feed.HomeCountry,
			Logger:      zapEventLogger(suggestionLogger),
		})
		if err != nil {
			logger.Fatal("failed to initialise suggestion service", zap.Error(err))
		}
	} else {
		logger.Warn("mail relay credentials missing; suggestion submissions disabled")
	}

	shopHandlers := handlers.NewShopHandlers(
		handlers.WithShopDirectory(directory),
		handlers.WithShopMapLinkBase(cfg.Map.LinkBaseURL),
	)
	tagHandlers := handlers.NewTagHandlers(cfg.Tags.Available)
	suggestionHandlers := handlers.NewSuggestionHandlers(suggestionService,
		handlers.WithSuggestionRateLimit(5, time.Minute),
	)
	sessionHandlers := handlers.NewSessionHandlers(
		handlers.WithSessionDirectory(directory),
		handlers.WithSessionMapView(mapView),
		handlers.WithSessionDrawer(drawerGeom),
	)
	feedHandlers := handlers.NewFeedHandlers(refresher)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
		handlers.WithReadinessCheck("directory", func(ctx context.Context) error {
			if !directory.Loaded() {
				return errors.New("shop feed not loaded")
			}
			return nil
		}),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithShopRoutes(shopHandlers.Routes),
		handlers.WithTagRoutes(tagHandlers.Routes),
		handlers.WithSuggestionRoutes(suggestionHandlers.Routes),
		handlers.WithSessionRoutes(sessionHandlers.Routes),
		handlers.WithInternalRoutes(feedHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("retrohunt api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// directoryRefresher reloads the shop directory from the upstream feed.
type directoryRefresher struct {
	client      *feed.Client
	directory   services.DirectoryService
	homeCountry string
}

func newDirectoryRefresher(client *feed.Client, directory services.DirectoryService, homeCountry string) *directoryRefresher {
	return &directoryRefresher{client: client, directory: directory, homeCountry: homeCountry}
}

// Refresh fetches and normalizes the feed and swaps the record set in.
func (r *directoryRefresher) Refresh(ctx context.Context) (int, error) {
	rows, err := r.client.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	records := feed.Normalize(rows, r.homeCountry)
	r.directory.Replace(records)
	return len(records), nil
}

func mapViewFromConfig(cfg config.MapConfig) services.MapViewConfig {
	return services.MapViewConfig{
		DefaultCenter: services.LatLng{Lat: cfg.CenterLat, Lng: cfg.CenterLng},
		DefaultZoom:   cfg.Zoom,
		SelectionZoom: cfg.SelectionZoom,
		FlyDuration:   cfg.FlyDuration,
		TileLayer: services.TileLayer{
			URLTemplate: cfg.TileLayerURL,
			Attribution: cfg.TileAttribution,
			MaxZoom:     cfg.TileMaxZoom,
		},
		NarrowViewportPx:  float64(cfg.NarrowViewportPx),
		SelectionOffsetPx: float64(cfg.SelectionOffset),
	}
}

func buildInfoFromEnv(started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	environment := strings.TrimSpace(os.Getenv("API_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func zapEventLogger(logger *zap.Logger) services.LogFunc {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Info(event, zFields...)
	}
}
