// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/recommend"
)

type recommendFlags struct {
	actor   string
	lat     float64
	lon     float64
	radius  float64
	tag     string
	context map[string]string
	times   int
}

func newRecommendCmd(g *globalFlags) *cobra.Command {
	f := &recommendFlags{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Run recommendation queries in one session",
		Long: `Runs --times queries in a fresh session for --actor and prints the last
response. Personalization starts once the session has answered enough
queries (recommend.personalize_after).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, g, f)
		},
	}
	cmd.Flags().StringVar(&f.actor, "actor", "", "actor id (required)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "origin longitude")
	cmd.Flags().Float64Var(&f.radius, "radius", 3, "search radius in km")
	cmd.Flags().StringVar(&f.tag, "tag", "", "preferred tag")
	cmd.Flags().StringToStringVar(&f.context, "context", nil, "declared context as key=value pairs, passed to the tag classifier")
	cmd.Flags().IntVarP(&f.times, "times", "n", 1, "number of queries to run")
	_ = cmd.MarkFlagRequired("actor")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	return cmd
}

func runRecommend(cmd *cobra.Command, g *globalFlags, f *recommendFlags) error {
	if f.times < 1 {
		return errors.New("--times must be at least 1")
	}
	ctx := cmd.Context()
	engine, led, err := g.openEngine(ctx)
	if err != nil {
		return err
	}
	defer led.Close()

	q := recommend.Query{
		RadiusKm:        f.radius,
		PreferredTag:    f.tag,
		DeclaredContext: f.context,
	}
	if cmd.Flags().Changed("lat") {
		q.Origin = &geo.Point{Lat: f.lat, Lon: f.lon}
	}

	sess := recommend.NewSession(f.actor)
	var resp *recommend.Response
	for i := 0; i < f.times; i++ {
		if resp, err = engine.Recommend(ctx, sess, q); err != nil {
			return err
		}
	}

	if g.jsonOut {
		return printJSON(cmd, resp)
	}
	if resp.Empty {
		cmd.Println("No places within the radius.")
		return nil
	}

	cmd.Printf("Query %d for %s:\n", resp.Metadata.QueryNumber, f.actor)
	if len(f.context) > 0 {
		cmd.Printf("Context: %s\n", formatContext(f.context))
	}
	for i, c := range resp.Candidates {
		cmd.Printf("  [%d] %s (%s) %s\n", i+1, c.Name, c.Category, formatDistance(c.DistanceKm))
		if len(c.Tags) > 0 {
			cmd.Printf("      %s\n", strings.Join(c.Tags, ", "))
		}
	}
	if !resp.Personalization.IsEmpty() {
		cmd.Printf("Expanded categories: %s\n", strings.Join(resp.Personalization.ExpandedCategories, ", "))
	}
	for _, s := range resp.CollaborativeSuggestions {
		cmd.Printf("  similar actors chose: %s (%s)\n", s.Name, s.Category)
	}
	return nil
}

// formatContext renders declared context as sorted key=value pairs.
func formatContext(kv map[string]string) string {
	pairs := make([]string, 0, len(kv))
	for k, v := range kv {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}
