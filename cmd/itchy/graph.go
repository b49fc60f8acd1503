package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mati7337/itchy-graphs/internal/graph"
	"github.com/mati7337/itchy-graphs/internal/store"
)

// NewGraphCmd creates the graph command.
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <output-dir>",
		Short: "Build a similarity graph of works from crawl results",
		Long: `Graph reads the works/ and authors/ files written by crawl and prints
an undirected weighted graph in DOT format.

Two works are similar when the same people commented on both. Works with
fewer commenters than the node threshold are left out, and edges lighter
than the edge threshold are dropped.

Examples:
  # Print the graph of ./output
  itchy graph output

  # Use the overlap coefficient and write to a file
  itchy graph --method overlap_coefficient -o itch.dot output

  # Render with Graphviz
  itchy graph output | neato -Tsvg > itch.svg`,
		Args: cobra.ExactArgs(1),
		RunE: runGraphCmd,
	}

	defaults := graph.DefaultOptions()
	cmd.Flags().Int("node-threshold", defaults.NodeThreshold,
		"Minimum number of commenters for a work to appear")
	cmd.Flags().Float64("edge-threshold", defaults.EdgeThreshold,
		"Minimum similarity for an edge to appear")
	cmd.Flags().String("method", defaults.Method.String(),
		"Similarity measure: jaccard or overlap_coefficient")
	cmd.Flags().Int("concurrency", 0,
		"Rows computed in parallel (0 uses all CPUs)")
	cmd.Flags().StringP("output", "o", "",
		"Write the DOT graph to a file instead of stdout")

	return cmd
}

// runGraphCmd executes the graph command.
func runGraphCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("node-threshold") {
		if cfg.Graph.NodeThreshold, err = flags.GetInt("node-threshold"); err != nil {
			return err
		}
	}
	if flags.Changed("edge-threshold") {
		if cfg.Graph.EdgeThreshold, err = flags.GetFloat64("edge-threshold"); err != nil {
			return err
		}
	}
	if flags.Changed("method") {
		if cfg.Graph.Method, err = flags.GetString("method"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Graph.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}

	if err := cfg.ValidateGraph(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	opts, err := cfg.GraphOptions()
	if err != nil {
		return err
	}
	opts.Logger = setupLogger(cmd.ErrOrStderr(), cfg)

	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}

	if outputPath == "" {
		return buildGraph(cmd, args[0], opts, cmd.OutOrStdout())
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return err
	}
	if err := buildGraph(cmd, args[0], opts, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// buildGraph loads the crawl results in dir and writes their DOT graph to w.
func buildGraph(cmd *cobra.Command, dir string, opts graph.Options, w io.Writer) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to read results: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	idx, err := graph.LoadIndex(store.New(dir))
	if err != nil {
		return err
	}

	edges, err := graph.Build(cmd.Context(), idx, opts)
	if err != nil {
		return err
	}

	return graph.WriteDOT(w, edges)
}
