// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/respite/internal/catalog"
)

// CatalogReloader swaps in a freshly loaded catalog.
type CatalogReloader interface {
	ReloadCatalog(ctx context.Context, src catalog.Source) error
}

// CatalogWatchService reloads the catalog when its file changes.
//
// The parent directory is watched rather than the file so editors that
// replace the file by rename are still seen. Bursts of events inside the
// debounce window produce one reload.
type CatalogWatchService struct {
	reloader CatalogReloader
	src      catalog.Source
	path     string
	debounce time.Duration
	logger   zerolog.Logger
}

// NewCatalogWatchService watches path and reloads from src. debounce of
// zero or less means 500ms.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewCatalogWatchService(reloader CatalogReloader, src catalog.Source, path string, debounce time.Duration, logger zerolog.Logger) *CatalogWatchService {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &CatalogWatchService{
		reloader: reloader,
		src:      src,
		path:     filepath.Clean(abs),
		debounce: debounce,
		logger:   logger.With().Str("service", "catalog-watch").Str("path", abs).Logger(),
	}
}

// Serve implements suture.Service.
func (s *CatalogWatchService) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.logger.Info().Dur("debounce", s.debounce).Msg("watching catalog for changes")

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("catalog watcher closed")
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug().Str("op", event.Op.String()).Msg("catalog file changed")
			timer.Reset(s.debounce)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("catalog watcher closed")
			}
			s.logger.Warn().Err(werr).Msg("catalog watcher error")

		case <-timer.C:
			// Engine logs and keeps the old snapshot on failure.
			if err := s.reloader.ReloadCatalog(ctx, s.src); err != nil {
				s.logger.Warn().Err(err).Msg("catalog reload rejected")
			}
		}
	}
}

func (s *CatalogWatchService) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	return filepath.Clean(name) == s.path
}

func (s *CatalogWatchService) String() string {
	return "catalog-watch"
}
