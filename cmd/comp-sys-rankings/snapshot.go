// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Recompute the unfiltered ranking and store it",
	Long: `Snapshot ranks every venue over all years, writes the ranking to the
snapshot file, and rebuilds the author index used by the distribution
command. Filtered rankings are never written to the snapshot.`,
	RunE: runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cleanup, err := newService(ctx, cfg, serviceOptions{snapshots: true})
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(os.Stderr, "warning: skipped %v\n", r)
	}

	fmt.Printf("Snapshot %s written: %d institutions from %s dataset\n",
		res.Snapshot.ID, res.Snapshot.Institutions, res.Origin)
	fmt.Printf("  file:  %s\n", cfg.Snapshot.Path)
	fmt.Printf("  index: %s\n", cfg.Snapshot.IndexPath)
	return nil
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
