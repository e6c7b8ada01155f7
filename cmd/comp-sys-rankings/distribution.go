// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var distributionCmd = &cobra.Command{
	Use:   "distribution <institution> <author>",
	Short: "Show an author's paper count per area from the last snapshot",
	Long: `Distribution reads the author's per-area paper counts from the most
recent snapshot. Every known area is listed; areas without papers show 0.
Run the snapshot command first.`,
	Args: cobra.ExactArgs(2),
	RunE: runDistribution,
}

func runDistribution(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cleanup, err := newService(ctx, cfg, serviceOptions{snapshots: true})
	if err != nil {
		return err
	}
	defer cleanup()

	dist, err := svc.Distribution(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("distribution for %q at %q: %w", args[1], args[0], err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dist)
	}
	formatDistributionTable(os.Stdout, dist)
	return nil
}

func formatDistributionTable(w io.Writer, dist map[string]int) {
	areas := make([]string, 0, len(dist))
	total := 0
	for a, n := range dist {
		areas = append(areas, a)
		total += n
	}
	sort.Strings(areas)

	fmt.Fprintf(w, "%-40s  %6s\n", "Area", "Papers")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	for _, a := range areas {
		fmt.Fprintf(w, "%-40s  %6d\n", a, dist[a])
	}
	fmt.Fprintln(w, strings.Repeat("-", 48))
	fmt.Fprintf(w, "%-40s  %6d\n", "total", total)
}

func init() {
	distributionCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(distributionCmd)
}
