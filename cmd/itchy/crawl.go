package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mati7337/itchy-graphs/internal/config"
	"github.com/mati7337/itchy-graphs/internal/crawler"
	"github.com/mati7337/itchy-graphs/internal/database"
	"github.com/mati7337/itchy-graphs/internal/fetch"
	"github.com/mati7337/itchy-graphs/internal/itch"
	itchylog "github.com/mati7337/itchy-graphs/internal/log"
	"github.com/mati7337/itchy-graphs/internal/metrics"
	"github.com/mati7337/itchy-graphs/internal/model"
	"github.com/mati7337/itchy-graphs/internal/report"
	"github.com/mati7337/itchy-graphs/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [work-url...]",
		Short: "Crawl the comment graph starting from seed works",
		Long: `Crawl harvests the comment graph of itch.io in rounds.

Every round first collects all comments of the scheduled works and
schedules their authors, then collects the recent activity of every
scheduled author and schedules the works they commented on for the next
round. Each work and author is visited at most once.

Results are written as JSON files to <output-dir>/works and
<output-dir>/authors. Responses are cached in SQLite so that a repeated
crawl only fetches what it has not seen.

Examples:
  # Crawl three rounds from the default seed
  itchy crawl

  # Crawl from two seeds until nothing new is found
  itchy crawl --rounds 0 https://a.itch.io/game https://b.itch.io/other

  # Send the itch.io session cookie and write a Markdown summary
  itchy crawl --cookie "itchio=..." --markdown --report summary.md

Configuration file (.itchy) example:
  seeds:
    - https://chasefox.itch.io/carrot-the-first-seed
  maxRounds: 3
  politeDelay: 1s
  cookie: "itchio=..."`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("rounds", "r", config.DefaultMaxRounds,
		"Number of crawl rounds (0 runs until no new nodes are found)")
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory receiving the works/ and authors/ result files")

	// Network flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("retry-cooldown", fetch.DefaultRetryCooldown,
		"Wait before retrying a rate-limited or failed request")
	cmd.Flags().Duration("polite-delay", fetch.DefaultPoliteDelay,
		"Wait after every response not served from the cache")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", fetch.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("cookie", "",
		"Cookie header sent with every request")
	cmd.Flags().StringToString("header", nil,
		"Extra header sent with every request (repeatable, Name=value)")

	// Cache and history flags
	cmd.Flags().Bool("no-cache", false, "Disable the response cache")
	cmd.Flags().String("cache-dir", "", "Directory of the response cache database")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the crawl history")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output a JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "R", "",
		"Write the summary to a file instead of stdout")

	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address during the crawl (e.g. 127.0.0.1:9100)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildCrawlConfig layers the crawl flags over defaults and the config file.
// Only flags the user set override the file.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.Seeds = append([]string(nil), args...)
	}

	if flags.Changed("rounds") {
		if cfg.MaxRounds, err = flags.GetInt("rounds"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retry-cooldown") {
		if cfg.RetryCooldown, err = flags.GetDuration("retry-cooldown"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("polite-delay") {
		if cfg.PoliteDelay, err = flags.GetDuration("polite-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cookie") {
		if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("cache-dir") {
		if cfg.CacheDir, err = flags.GetString("cache-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("metrics-addr") {
		if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
			return nil, err
		}
	}

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.CacheEnabled = false
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseSeeds normalizes every seed into a work reference.
func parseSeeds(seeds []string) ([]model.WorkRef, error) {
	refs := make([]model.WorkRef, 0, len(seeds))
	for _, seed := range seeds {
		ref, err := itch.NormalizeWorkURL(seed)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", seed, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// runCrawl wires the crawl components together, runs the crawl and writes
// the summary. The summary is written and recorded even when the crawl
// aborts; the crawl error is returned afterwards.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	seeds, err := parseSeeds(cfg.Seeds)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"rounds", cfg.MaxRounds,
		"output", cfg.OutputDir,
		"cache", cfg.CacheEnabled,
		"proxy", cfg.ProxyAddress,
	)
	if len(cfg.Headers) > 0 {
		logger.Debug("extra request headers", "headers", itchylog.RedactHeaders(cfg.Headers))
	}

	m := metrics.New(true)
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, m, logger)
		defer shutdown()
	}

	getterOpts := []fetch.GetterOption{fetch.WithUserAgent(cfg.UserAgent)}
	if cfg.MaxBodySize > 0 {
		getterOpts = append(getterOpts, fetch.WithMaxBodySize(cfg.MaxBodySize))
	}

	if cfg.CacheEnabled {
		cache, err := database.Open(cfg.CacheDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open response cache: %w", err)
		}
		defer cache.Close()
		logger.Info("response cache opened", "path", cache.Path())
		getterOpts = append(getterOpts, fetch.WithCache(cache))
	}

	client, err := fetch.NewHTTPClient(fetch.ClientOptions{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		Cookie:       cfg.Cookie,
		Headers:      cfg.Headers,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	fetcher := fetch.NewFetcher(
		fetch.NewHTTPGetter(client, getterOpts...),
		fetch.WithRetryPolicy(fetch.NewFixedCooldown(cfg.RetryCooldown)),
		fetch.WithPoliteDelay(cfg.PoliteDelay),
		fetch.WithLogger(logger),
		fetch.WithRecorder(m),
	)

	results, err := store.Open(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to open output directory: %w", err)
	}

	c := crawler.New(fetcher, results, seeds,
		crawler.WithMaxRounds(cfg.MaxRounds),
		crawler.WithLogger(logger),
		crawler.WithRoundObserver(m),
	)

	summary, crawlErr := c.Run(ctx)

	// The run is recorded and reported even after cancellation.
	finishCtx := context.WithoutCancel(ctx)
	if cfg.SaveHistory {
		if err := recordRun(finishCtx, cfg.DataDir, summary, logger); err != nil {
			logger.Warn("failed to record crawl run", "error", err)
		}
	}

	if err := writeSummary(cfg, summary, stdout); err != nil {
		return errors.Join(crawlErr, fmt.Errorf("failed to write summary: %w", err))
	}

	return crawlErr
}

// recordRun stores the summary in the history database.
func recordRun(ctx context.Context, dataDir string, summary *model.CrawlSummary, logger *slog.Logger) error {
	db, err := database.Open(dataDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveCrawlRun(ctx, summary)
	if err != nil {
		return err
	}

	logger.Info("crawl run recorded", "id", id, "path", db.Path())
	return nil
}

// newSummaryWriter selects the summary format configured in cfg.
func newSummaryWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// writeSummary writes the summary to the report file or to stdout.
func writeSummary(cfg *config.Config, summary *model.CrawlSummary, stdout io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := newSummaryWriter(cfg, stdout).Write(summary)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(cfg.ReportFile) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return err
	}

	if _, err := newSummaryWriter(cfg, f).Write(summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
