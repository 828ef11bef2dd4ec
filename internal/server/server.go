package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"kismet/internal/cache"
	"kismet/internal/config"
	"kismet/internal/document"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// PreviewServer serves the mini-app document with per-artist share metadata
type PreviewServer struct {
	config     *config.Config
	site       *config.Site
	logger     *logrus.Logger
	chain      *document.Chain
	localChain *document.Chain // chain without the origin provider
	pages      *cache.PageCache
	watcher    *fsnotify.Watcher
	metrics    *metrics
	lastSource atomic.Value
	httpServer *http.Server
}

// NewPreviewServer creates a new preview server instance. pages may be nil
// to disable the rendered document cache.
func NewPreviewServer(cfg *config.Config, site *config.Site, logger *logrus.Logger, chain *document.Chain, pages *cache.PageCache) *PreviewServer {
	ps := &PreviewServer{
		config:     cfg,
		site:       site,
		logger:     logger,
		chain:      chain,
		localChain: chain.Without(document.SourceOrigin),
		pages:      pages,
		metrics:    &metrics{},
	}
	ps.lastSource.Store("")
	return ps
}

// Start starts the preview server and blocks until it stops
func (ps *PreviewServer) Start() error {
	// Start dist watcher if enabled
	if ps.pages != nil && ps.config.Cache.WatchDist {
		if err := ps.startDistWatcher(); err != nil {
			ps.logger.WithError(err).Warn("Could not start dist watcher")
		}
	}

	ps.httpServer = &http.Server{
		Addr:         ps.config.GetAddress(),
		Handler:      ps.Routes(),
		ReadTimeout:  time.Duration(ps.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(ps.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(ps.config.Server.IdleTimeout) * time.Second,
	}

	ps.logger.WithFields(logrus.Fields{
		"address":   fmt.Sprintf("http://%s", ps.config.GetAddress()),
		"base_url":  ps.site.BaseURL,
		"artists":   len(ps.site.ArtistIDs()),
		"providers": ps.chain.Providers(),
	}).Info("Kismet preview server starting")

	if err := ps.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Routes builds the HTTP handler with all routes and middleware
func (ps *PreviewServer) Routes() http.Handler {
	r := mux.NewRouter()

	// The document is served for the site root and the serverless entry path
	for _, path := range []string{"/", "/index.html", "/api/index"} {
		r.HandleFunc(path, ps.handleDocument).Methods(http.MethodGet, http.MethodHead)
	}
	r.HandleFunc("/health", ps.handleHealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/qr", ps.handleShareQR).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").Handler(ps.staticHandler()).Methods(http.MethodGet, http.MethodHead)

	r.MethodNotAllowedHandler = http.HandlerFunc(ps.handleMethodNotAllowed)

	var handler http.Handler = r
	handler = ps.corsMiddleware(handler)
	handler = ps.requestLoggingMiddleware(handler)
	handler = ps.panicRecoveryMiddleware(handler)
	return handler
}

// Shutdown gracefully shuts down the preview server
func (ps *PreviewServer) Shutdown(ctx context.Context) error {
	ps.logger.Info("Shutting down preview server...")

	ps.stopDistWatcher()

	var err error
	if ps.httpServer != nil {
		err = ps.httpServer.Shutdown(ctx)
	}
	if ps.pages != nil {
		if cerr := ps.pages.Close(); cerr != nil {
			ps.logger.WithError(cerr).Warn("Error closing page cache")
		}
	}

	ps.logger.Info("Preview server shutdown complete")
	return err
}
