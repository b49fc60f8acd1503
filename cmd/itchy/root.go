package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mati7337/itchy-graphs/internal/config"
	itchylog "github.com/mati7337/itchy-graphs/internal/log"
)

// NewRootCmd creates the root command for itchy.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itchy",
		Short: "Crawl the itch.io comment graph",
		Long: `itchy crawls itch.io starting from one or more seed works.

Each round harvests every comment of the scheduled works, then the recent
activity of every newly seen author, and schedules the works those authors
commented on for the next round. Results are saved as JSON files that the
graph command turns into a similarity graph of works.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .itchy in current or home directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewGraphCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds a Config from defaults and the config file.
// Command-specific flags are applied by the caller afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.JSONLogs, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}

	// An explicit config path must exist; the implicit lookup may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// setupLogger creates the secure structured logger for cfg.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLogs {
		return itchylog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return itchylog.NewSecureLogger(w, cfg.Verbose)
}
