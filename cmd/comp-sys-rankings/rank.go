// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank institutions by publications at the selected venues",
	Long: `Rank loads the dataset, keeps the publications at the selected venues
within the year range, and orders institutions by average count (the
geometric mean of area scores shifted by one). Authors inside each
institution are ordered by their total score.

Select venues with --venue and whole areas with --area; with neither, every
venue is selected. Years default to the full range.`,
	RunE: runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cleanup, err := newService(ctx, cfg, serviceOptions{snapshots: true})
	if err != nil {
		return err
	}
	defer cleanup()

	sel := selectionFromFlags(cmd, svc.FullSelection())
	res, err := svc.Rank(ctx, sel)
	if err != nil {
		return err
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(os.Stderr, "warning: skipped %v\n", r)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	limit, _ := cmd.Flags().GetInt("limit")
	switch {
	case jsonOutput:
		return writeIndentedJSON(os.Stdout, res.JSON)
	case yamlOutput:
		return writeYAML(os.Stdout, res.JSON)
	default:
		return formatRankTable(os.Stdout, res.Ranking, limit)
	}
}

func selectionFromFlags(cmd *cobra.Command, full ranking.Selection) ranking.Selection {
	venueList, _ := cmd.Flags().GetStringSlice("venue")
	areaList, _ := cmd.Flags().GetStringSlice("area")
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")

	sel := ranking.Selection{Venues: venueList, Areas: areaList, YearLow: full.YearLow, YearHigh: full.YearHigh}
	if len(sel.Venues) == 0 && len(sel.Areas) == 0 {
		sel.Venues = full.Venues
	}
	if cmd.Flags().Changed("from") {
		sel.YearLow = from
	}
	if cmd.Flags().Changed("to") {
		sel.YearHigh = to
	}
	return sel
}

func formatRankTable(w io.Writer, r types.Ranking, limit int) error {
	if len(r) == 0 {
		fmt.Fprintln(w, "No institutions ranked.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-40s  %9s  %9s  %7s  %s\n",
		"Rank", "Institution", "Average", "Total", "Faculty", "Top author")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, inst := range r {
		if limit > 0 && i >= limit {
			break
		}
		name := inst.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		top := ""
		if len(inst.Authors) > 0 && inst.Authors[0].TotalScore() > 0 {
			a := inst.Authors[0]
			top = fmt.Sprintf("%s (%.2f)", a.Name, a.TotalScore())
			if len(a.TopAreas) > 0 {
				top += " " + strings.Join(a.TopAreas, ", ")
			}
		}
		fmt.Fprintf(w, "%-4d  %-40s  %9.2f  %9.2f  %7d  %s\n",
			i+1, name, inst.AverageCount, inst.TotalScore, inst.AuthorCount, top)
	}

	fmt.Fprintf(w, "\n%d institutions\n", len(r))
	return nil
}

func init() {
	rankCmd.Flags().StringSlice("venue", nil, "venues to include (repeatable or comma-separated)")
	rankCmd.Flags().StringSlice("area", nil, "research areas to include; expands to all their venues")
	rankCmd.Flags().Int("from", 0, "first year, inclusive (default: ranking.first_year)")
	rankCmd.Flags().Int("to", 0, "last year, inclusive (default: current year)")
	rankCmd.Flags().Int("limit", 50, "maximum rows in table output (0 for all)")
	rankCmd.Flags().Bool("json", false, "output the full ranking as JSON")
	rankCmd.Flags().Bool("yaml", false, "output the full ranking as YAML")
	rankCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(rankCmd)
}
