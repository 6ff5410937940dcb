// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/respite/internal/api"
	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/config"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/supervisor"
	"github.com/tomtom215/respite/internal/supervisor/services"
)

var errSupervisorExited = errors.New("supervisor tree exited before shutdown was requested")

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Respite stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential startup
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("catalog", cfg.Catalog.Path).
		Str("ledger_backend", cfg.Ledger.Backend).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Respite")

	src, err := catalog.SourceFor(cfg.Catalog)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		return err
	}
	logging.Info().
		Int("places", cat.Len()).
		Int("categories", len(cat.Categories())).
		Int("dropped", cat.Dropped()).
		Msg("Catalog loaded")

	led, err := ledger.Open(ctx, cfg.Ledger, cfg.Location())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := led.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("Error closing ledger")
		}
	}()
	logging.Info().Str("backend", led.Backend()).Msg("Ledger opened")

	ev, err := openEvents(cfg.Events)
	if err != nil {
		return err
	}
	if ev != nil {
		defer ev.close()
	}

	engine, err := buildEngine(cfg, cat, led, ev)
	if err != nil {
		return err
	}

	sessions := api.NewSessionStore(cfg.Recommend.SessionTTL)
	handlerCfg := api.DefaultHandlerConfig()
	handlerCfg.DefaultRadiusKm = cfg.Recommend.DefaultRadiusKm

	handler := api.NewHandler(engine, sessions, ev.selectionTally(), handlerCfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	tree.AddDataService(sessions)
	if cfg.Catalog.Watch {
		if cfg.Catalog.Format == "duckdb" {
			logging.Warn().Msg("catalog.watch ignored for duckdb catalogs")
		} else {
			tree.AddDataService(services.NewCatalogWatchService(engine, src, cfg.Catalog.Path,
				cfg.Catalog.ReloadDebounce, logging.WithComponent("catalog")))
		}
	}
	if ev != nil {
		tree.AddMessagingService(ev.consumer)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	stats := engine.Stats()
	logging.Info().
		Int64("requests", stats.Requests).
		Int("sessions", sessions.Len()).
		Msg("Engine stopped")

	if ctx.Err() == nil {
		return errSupervisorExited
	}
	return nil
}
