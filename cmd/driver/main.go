package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driver-sync/internal/core/cache"
	"driver-sync/internal/core/config"
	"driver-sync/internal/core/httpclient"
	"driver-sync/internal/core/logger"
	"driver-sync/internal/core/metrics"
	"driver-sync/internal/core/proxy"
	"driver-sync/internal/core/server"
	"driver-sync/internal/core/transport"
	locationadapter "driver-sync/internal/features/location/adapters"
	locationdomain "driver-sync/internal/features/location/domain"
	locationhandler "driver-sync/internal/features/location/handler"
	locationservice "driver-sync/internal/features/location/service"
	notificationadapter "driver-sync/internal/features/notifications/adapters"
	notificationhandler "driver-sync/internal/features/notifications/handler"
	notificationservice "driver-sync/internal/features/notifications/service"
	routeadapter "driver-sync/internal/features/routes/adapters"
	routehandler "driver-sync/internal/features/routes/handler"
	routeservice "driver-sync/internal/features/routes/service"
	sessionadapter "driver-sync/internal/features/session/adapters"
	sessionhandler "driver-sync/internal/features/session/handler"
	"driver-sync/internal/features/session/ports"
	sessionservice "driver-sync/internal/features/session/service"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func openStore(cfg config.SessionConfig) (ports.Store, error) {
	switch cfg.Backend {
	case "file":
		return sessionadapter.NewFileStore(cfg.Path), nil
	case "sqlite", "":
		return sessionadapter.OpenSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// @title Driver Sync API
// @version 1.0
// @description Local bridge for the delivery driver client: session, routes, notifications and location.
// @contact.name API Support
// @license.name MIT
// @host localhost:8090
// @BasePath /
func main() {
	configDir := pflag.String("config-dir", ".", "directory holding the .env file")
	pflag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api", cfg.API.BaseURL),
	)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session
	store, err := openStore(cfg.Session)
	if err != nil {
		l.Fatal("Failed to open session store", zap.Error(err))
	}
	defer store.Close()
	manager := sessionservice.NewManager(store)

	// Transport
	client := httpclient.NewClient(httpclient.Options{
		ConnectTimeout: cfg.API.ConnectTimeout,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		Proxy:          proxy.FromConfig(cfg.Proxy),
	})
	api, err := transport.New(cfg.API.BaseURL, client, manager,
		transport.WithUnauthorizedHandler(manager.ClearOnUnauthorized))
	if err != nil {
		l.Fatal("Failed to create transport", zap.Error(err))
	}
	authGateway := sessionadapter.NewRESTGateway(api)
	api.SetRefresher(sessionadapter.NewRefreshClient(authGateway, manager))
	authService := sessionservice.NewAuthService(authGateway, manager)

	// Offline mirror
	redisCache, err := cache.NewRedisAdapter(cfg.Mirror.RedisURL)
	if err != nil {
		l.Fatal("Invalid mirror Redis URL", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Warn("Mirror Redis unreachable; offline copies will not be written", zap.Error(err))
	}
	mirror := routeadapter.NewRedisMirror(redisCache, cfg.Mirror.KeyPrefix)
	mirrorWriter := routeservice.NewMirrorWriter(mirror, cfg.Mirror.QueueSize)
	defer mirrorWriter.Close()

	// Routes
	routeGateway := routeadapter.NewRESTGateway(api)
	lifecycle := routeservice.NewLifecycle(routeGateway, mirrorWriter)
	feeds := routeservice.NewFeeds(routeGateway, lifecycle, cfg.Feed.PageSize, cfg.Feed.KeepStaleOnRefresh)

	// Notifications
	notifications := notificationservice.NewService(
		notificationadapter.NewRESTGateway(api), manager, cfg.Feed.PageSize, cfg.Feed.KeepStaleOnRefresh)

	// Location
	fixes := locationadapter.NewLatestFixProvider()
	reporter := locationservice.NewReporter(
		fixes,
		locationadapter.NewRESTSink(api),
		locationadapter.NewStaticAuthorizer(cfg.Location.PermissionGranted),
		cfg.Location.Interval,
		cfg.Location.MinInterval,
	)
	if err := reporter.Start(ctx); err != nil {
		if !errors.Is(err, locationdomain.ErrPermissionDenied) {
			l.Fatal("Failed to start location reporter", zap.Error(err))
		}
		l.Warn("Location reporting disabled", zap.Error(err))
	}
	defer reporter.Stop()

	srv := server.New(cfg)
	srv.Register(
		sessionhandler.NewSessionHandler(authService),
		routehandler.NewRouteHandler(lifecycle, feeds, mirror),
		notificationhandler.NewNotificationHandler(notifications),
		locationhandler.NewLocationHandler(fixes, reporter),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}
}
