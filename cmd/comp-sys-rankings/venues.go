// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List research areas and their venues",
	RunE:  runVenues,
}

func runVenues(cmd *cobra.Command, args []string) error {
	c := venues.Default()
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	if yamlOutput {
		return writeVenuesYAML(os.Stdout, c)
	}
	return formatVenuesTable(os.Stdout, c)
}

func formatVenuesTable(w io.Writer, c *venues.Classifier) error {
	fmt.Fprintf(w, "%-40s  %s\n", "Area", "Venues")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, area := range c.Areas() {
		vs, err := c.VenuesIn(area)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-40s  %s\n", area, strings.Join(vs, ", "))
	}
	return nil
}

func writeVenuesYAML(w io.Writer, c *venues.Classifier) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, area := range c.Areas() {
		vs, err := c.VenuesIn(area)
		if err != nil {
			return err
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range vs {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: area}, seq)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	venuesCmd.Flags().Bool("yaml", false, "output as YAML")
	rootCmd.AddCommand(venuesCmd)
}
