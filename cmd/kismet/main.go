package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kismet/internal/cache"
	"kismet/internal/config"
	"kismet/internal/document"
	"kismet/internal/ngrok"
	"kismet/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./kismet.toml"
	if p := os.Getenv("KISMET_CONFIG"); p != "" {
		configPath = p
	}

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	configured, err := config.NewLogger(cfg.Logging)
	if err != nil {
		logger.WithError(err).Fatal("Error configuring logger")
	}
	logger = configured

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The tunnel comes up first so its URL can become the share base
	tunnel, err := ngrok.NewService(&cfg.Ngrok, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating ngrok service")
	}
	if err := tunnel.StartTunnel(ctx, "localhost:"+cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Error starting ngrok tunnel")
	}
	cfg.Site.BaseURL = tunnel.ShareBaseURL(cfg.Site.BaseURL)

	site := cfg.BuildSite()
	chain := document.Standard(cfg, site, logger)

	var pages *cache.PageCache
	if cfg.Cache.Enabled {
		pages = cache.NewPageCache(ctx, cfg.Cache, logger)
	}

	previewServer := server.NewPreviewServer(cfg, site, logger, chain, pages)

	// Start the server in a goroutine
	errs := make(chan error, 1)
	go func() {
		errs <- previewServer.Start()
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errs:
		if err != nil {
			logger.WithError(err).Error("Preview server stopped")
		}
	case <-tunnel.Done():
		logger.Warn("Ngrok tunnel closed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := previewServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Preview server did not shut down cleanly")
	}
	if err := tunnel.Stop(); err != nil {
		logger.WithError(err).Warn("Error stopping ngrok tunnel")
	}
}
