// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/respite/internal/ledger"
)

func newLedgerCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or load the interaction ledger",
	}
	cmd.AddCommand(newLedgerImportCmd(g), newLedgerTailCmd(g))
	return cmd
}

func newLedgerImportCmd(g *globalFlags) *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "import <click-log.csv>",
		Short: "Append a timestamp,user_id,name,category click log to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, led, err := g.openLedger(ctx)
			if err != nil {
				return err
			}
			defer led.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := ledger.ReadCSV(ctx, f, encoding, cfg.Location())
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			for i, in := range rows {
				if err := led.Append(ctx, in); err != nil {
					return fmt.Errorf("append row %d: %w", i+1, err)
				}
			}
			cmd.Printf("Imported %d interactions into the %s ledger.\n", len(rows), led.Backend())
			return nil
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "file encoding: utf-8, utf-8-sig, cp949 or euc-kr")
	return cmd
}

func newLedgerTailCmd(g *globalFlags) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent interactions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, led, err := g.openLedger(ctx)
			if err != nil {
				return err
			}
			defer led.Close()

			recent, err := led.Recent(ctx, n)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return printJSON(cmd, recent)
			}
			loc := cfg.Location()
			for _, in := range recent {
				cmd.Printf("%s  %-12s %-24s %s\n", in.Timestamp.In(loc).Format(ledger.TimestampLayout), in.ActorID, in.PlaceName, in.Category)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of interactions")
	return cmd
}
