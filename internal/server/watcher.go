package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// startDistWatcher watches the build output and drops cached pages when a
// new build lands.
func (ps *PreviewServer) startDistWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ps.watcher = watcher

	// Start monitoring in a goroutine
	go ps.watchDist()

	dist := ps.config.Template.DistDir
	for _, dir := range []string{dist, filepath.Join(dist, "assets")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := watcher.Add(dir); err != nil {
				return err
			}
		}
	}

	ps.logger.WithField("dist_dir", dist).Info("Dist watcher started")
	return nil
}

// watchDist selects on watcher channels and dispatches events.
func (ps *PreviewServer) watchDist() {
	watcher := ps.watcher
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			ps.handleDistEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			ps.logger.WithError(err).Error("Dist watcher error")
		}
	}
}

// handleDistEvent clears the page cache for any relevant change.
func (ps *PreviewServer) handleDistEvent(event fsnotify.Event) {
	// Ignore editor temp files
	fileName := filepath.Base(event.Name)
	if strings.HasSuffix(fileName, ".tmp") || strings.HasSuffix(fileName, "~") {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	// A freshly created assets directory needs watching too
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := ps.watcher.Add(event.Name); err != nil {
				ps.logger.WithError(err).WithField("dir", event.Name).Warn("Could not watch new build directory")
			}
		}
	}

	if err := ps.pages.Clear(context.Background()); err != nil {
		ps.logger.WithError(err).Warn("Could not clear page cache")
		return
	}
	ps.logger.WithField("file", event.Name).Info("Build output changed, page cache cleared")
}

// stopDistWatcher closes the watcher (idempotent).
func (ps *PreviewServer) stopDistWatcher() {
	if ps.watcher != nil {
		ps.watcher.Close()
	}
}
