// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newNeighborsCmd(g *globalFlags) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "neighbors <category>",
		Short: "List categories whose places read most like the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, led, err := g.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer led.Close()

			neighbors, err := engine.Neighbors(args[0], k)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return printJSON(cmd, map[string]interface{}{"category": args[0], "neighbors": neighbors})
			}
			if len(neighbors) == 0 {
				cmd.Println("No neighbors.")
				return nil
			}
			cmd.Println(strings.Join(neighbors, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "limit", "k", 3, "number of neighbor places to consider")
	return cmd
}

func newProfileCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <actor>",
		Short: "Show the preference profile and an actor's collaborative suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, led, err := g.openEngine(ctx)
			if err != nil {
				return err
			}
			defer led.Close()

			profile, err := engine.Profile(ctx, args[0])
			if err != nil {
				return err
			}
			suggestions, err := engine.Suggestions(ctx, args[0], nil)
			if err != nil {
				return err
			}

			if g.jsonOut {
				return printJSON(cmd, map[string]interface{}{
					"actor_id":    args[0],
					"profile":     profile,
					"suggestions": suggestions,
				})
			}
			if profile.IsEmpty() {
				cmd.Println("No selections recorded yet.")
				return nil
			}
			cmd.Println("Top categories:")
			for _, c := range profile.TopCategories {
				cmd.Printf("  %-20s %d\n", c.Category, c.Count)
			}
			if len(profile.ExpandedCategories) > 0 {
				cmd.Printf("Expanded: %s\n", strings.Join(profile.ExpandedCategories, ", "))
			}
			if len(suggestions) > 0 {
				cmd.Println("Suggestions:")
				for _, s := range suggestions {
					cmd.Printf("  %s (%s)\n", s.Name, s.Category)
				}
			}
			return nil
		},
	}
}
