package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
type SimpleWriter struct {
	baseWriter

	// verbose adds the phases of each round.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRounds(&sb, summary)
	w.writeTotals(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         ITCHY CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seeds:      %s\n", seedList(summary))
	fmt.Fprintf(sb, "Started:    %s\n", summary.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Duration:   %s\n", summary.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Rounds:     %d of %s\n", len(summary.Rounds), maxRoundsText(summary.MaxRounds))
	fmt.Fprintf(sb, "Status:     %s\n", statusText(summary))
	sb.WriteString("\n")
}

// writeRounds writes one line per round.
func (w *SimpleWriter) writeRounds(sb *strings.Builder, summary *model.CrawlSummary) {
	if len(summary.Rounds) == 0 {
		sb.WriteString("No rounds were run.\n\n")
		return
	}

	sb.WriteString("ROUNDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, r := range summary.Rounds {
		fmt.Fprintf(sb, "  #%d  works %s (+%s missing)  authors %s (+%s missing)  comments %s  new: %s authors, %s works\n",
			r.Round,
			w.count(r.WorksProcessed), w.count(r.WorksMissing),
			w.count(r.AuthorsProcessed), w.count(r.AuthorsMissing),
			w.count(r.CommentsHarvested),
			w.count(r.NewAuthors), w.count(r.NewWorks),
		)
		if w.verbose && len(r.Phases) > 0 {
			fmt.Fprintf(sb, "       phases: %s\n", strings.Join(r.Phases, ", "))
		}
	}
	sb.WriteString("\n")
}

// writeTotals writes the visited counts.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("TOTALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  Works visited:    %s\n", w.count(summary.WorksVisited))
	fmt.Fprintf(sb, "  Authors visited:  %s\n", w.count(summary.AuthorsVisited))
	fmt.Fprintf(sb, "  Comments:         %s\n", w.count(summary.TotalComments()))
	sb.WriteString("\n")
}

func maxRoundsText(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
