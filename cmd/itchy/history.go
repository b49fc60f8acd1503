package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mati7337/itchy-graphs/internal/database"
	"github.com/mati7337/itchy-graphs/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl runs",
		Long: `History prints the crawl runs recorded in the history database as a
Markdown table, most recent first.

Examples:
  # Show the last 10 runs
  itchy history

  # Show every run
  itchy history --limit 0`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to show (0 shows all)")
	cmd.Flags().String("data-dir", "", "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("data-dir") {
		if cfg.DataDir, err = cmd.Flags().GetString("data-dir"); err != nil {
			return err
		}
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	w := report.NewMarkdownWriter(cmd.OutOrStdout())

	if _, err := os.Stat(filepath.Join(cfg.DataDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		_, err := w.WriteHistory(nil)
		return err
	}

	db, err := database.Open(cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	runs, err := db.ListCrawlRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list crawl runs: %w", err)
	}

	entries := make([]report.HistoryEntry, 0, len(runs))
	for _, run := range runs {
		if run.Summary == nil {
			continue
		}
		entries = append(entries, report.HistoryEntry{ID: run.ID, Summary: run.Summary})
	}

	_, err = w.WriteHistory(entries)
	return err
}
