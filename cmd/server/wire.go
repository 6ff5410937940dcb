// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/classifier"
	"github.com/tomtom215/respite/internal/config"
	"github.com/tomtom215/respite/internal/events"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/recommend"
	"github.com/tomtom215/respite/internal/recommend/algorithms"
)

// eventWiring is the optional selection fan-out.
type eventWiring struct {
	transport *events.Transport
	publisher *events.Publisher
	consumer  *events.Consumer
	tally     *events.Tally
}

// selectionTally is nil-safe so callers need not check whether events
// are enabled.
func (w *eventWiring) selectionTally() *events.Tally {
	if w == nil {
		return nil
	}
	return w.tally
}

func (w *eventWiring) close() {
	if err := w.publisher.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event publisher")
	}
	if err := w.transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event transport")
	}
}

// openEvents returns nil when events are disabled.
func openEvents(cfg config.EventsConfig) (*eventWiring, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Selection events disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	logger := logging.WithComponent("events")
	transport, err := events.Open(cfg, events.NewLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("open events backend: %w", err)
	}

	tally := events.NewTally()
	w := &eventWiring{
		transport: transport,
		publisher: events.NewPublisher(transport.Publisher, cfg.Topic),
		consumer:  events.NewConsumer(transport.Subscriber, cfg.Topic, tally, logger),
		tally:     tally,
	}
	logging.Info().Str("backend", transport.Backend).Str("topic", cfg.Topic).Msg("Selection events enabled")
	return w, nil
}

// buildEngine assembles the engine from the configured components.
func buildEngine(cfg *config.Config, cat *catalog.Catalog, led *ledger.Ledger, ev *eventWiring) (*recommend.Engine, error) {
	comps := recommend.Components{
		Sampler:      algorithms.NewDiversitySampler(),
		IndexBuilder: algorithms.ContentIndexBuilder,
		Ranker:       algorithms.NewPreferenceRanker(),
		Collaborator: algorithms.NewUserBasedCF(cfg.Recommend.ExcludeSeen),
	}

	if cfg.Classifier.Enabled {
		comps.TagPredictor = classifier.New(cfg.Classifier, &http.Client{Timeout: cfg.Classifier.Timeout})
		logging.Info().Str("url", cfg.Classifier.URL).Msg("Tag classifier enabled")
	}
	if ev != nil {
		comps.Publisher = ev.publisher
	}

	engine, err := recommend.NewEngine(recommend.ConfigFrom(cfg), cat, led, comps, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return engine, nil
}
