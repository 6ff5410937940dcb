// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/config"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/recommend"
	"github.com/tomtom215/respite/internal/recommend/algorithms"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "respitectl",
		Short:         "Query a Respite catalog and interaction ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default: CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newRecommendCmd(flags),
		newNeighborsCmd(flags),
		newProfileCmd(flags),
		newLedgerCmd(flags),
	)
	return root
}

func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFrom(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})
	return cfg, nil
}

// openLedger opens the configured ledger only.
func (f *globalFlags) openLedger(ctx context.Context) (*config.Config, *ledger.Ledger, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, nil, err
	}
	led, err := ledger.Open(ctx, cfg.Ledger, cfg.Location())
	if err != nil {
		return nil, nil, err
	}
	return cfg, led, nil
}

// openEngine loads the catalog and ledger and builds an engine without
// a classifier or event publisher. The caller closes the ledger.
func (f *globalFlags) openEngine(ctx context.Context) (*recommend.Engine, *ledger.Ledger, error) {
	cfg, led, err := f.openLedger(ctx)
	if err != nil {
		return nil, nil, err
	}
	src, err := catalog.SourceFor(cfg.Catalog)
	if err != nil {
		_ = led.Close()
		return nil, nil, err
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		_ = led.Close()
		return nil, nil, err
	}
	engine, err := recommend.NewEngine(recommend.ConfigFrom(cfg), cat, led, recommend.Components{
		Sampler:      algorithms.NewDiversitySampler(),
		IndexBuilder: algorithms.ContentIndexBuilder,
		Ranker:       algorithms.NewPreferenceRanker(),
		Collaborator: algorithms.NewUserBasedCF(cfg.Recommend.ExcludeSeen),
	}, logging.WithComponent("recommend"))
	if err != nil {
		_ = led.Close()
		return nil, nil, err
	}
	return engine, led, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func formatDistance(km *float64) string {
	if km == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f km", *km)
}
