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

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	dbValkey "github.com/kailas-cloud/dinefind/internal/db/valkey"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/metrics"
	"github.com/kailas-cloud/dinefind/internal/repository/detailcache"
	chiTransport "github.com/kailas-cloud/dinefind/internal/transport/chi"
	"github.com/kailas-cloud/dinefind/internal/version"
	detailuc "github.com/kailas-cloud/dinefind/internal/usecase/detail"
	healthuc "github.com/kailas-cloud/dinefind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/dinefind/internal/usecase/session"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override the configured HTTP port",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			d, err := newDeps(c)
			if err != nil {
				return err
			}
			defer d.close()
			if p := c.Int("port"); p > 0 {
				d.cfg.HTTP.Port = p
			}
			return serve(ctx, d)
		},
	}
}

func serve(ctx context.Context, d *deps) error {
	cfg, logger := d.cfg, d.logger

	logger.Info("Starting dinefind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", d.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend_url", cfg.Backend.BaseURL),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
	)

	// Detail fetcher: backend client, optionally behind the cache.
	var fetcher detailuc.Fetcher = d.backend
	var cache healthuc.CachePinger
	if cfg.Cache.Enabled() {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)

		fetcher = detailcache.New(d.backend, store,
			time.Duration(cfg.Cache.DetailTTLSec)*time.Second, metrics.DetailCacheTotal, logger)
		cache = store
	}

	registry := sessionuc.NewRegistry(d.backend, sessionuc.Options{
		State: domsession.Options{
			PageLimit:         cfg.Search.PageLimit,
			WindowSize:        cfg.Search.WindowSize,
			FallbackThumbnail: cfg.Search.FallbackThumbnail,
		},
		IdleTimeout:   time.Duration(cfg.Sessions.IdleTimeoutSec) * time.Second,
		SweepInterval: time.Duration(cfg.Sessions.SweepIntervalSec) * time.Second,
	}, logger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go registry.Run(sweepCtx)

	server := chiTransport.NewServer(registry, detailuc.New(fetcher), healthuc.New(d.backend, cache), logger).
		WithMaxImageBytes(cfg.Search.MaxImageBytes).
		WithAllowedOrigins(cfg.CORS.AllowedOrigins)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		Logger:         logger,
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	stopSweep()
	registry.Wait()

	logger.Info("Server stopped gracefully")
	return nil
}
