package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// Writer defines the interface for summary output.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.CrawlSummary) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output  io.Writer
	printer *message.Printer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output:  output,
		printer: message.NewPrinter(language.English),
	}
}

// count formats n with thousands separators.
func (b baseWriter) count(n int) string {
	return b.printer.Sprintf("%d", n)
}

var titleCaser = cases.Title(language.English)

// statusText describes how a run ended.
func statusText(summary *model.CrawlSummary) string {
	status := titleCaser.String(string(summary.Reason))
	if status == "" {
		status = "Unknown"
	}
	if summary.Error != "" {
		status += " - " + summary.Error
	}
	return status
}

// seedList joins the seeds for single-line display.
func seedList(summary *model.CrawlSummary) string {
	if len(summary.Seeds) == 0 {
		return "-"
	}
	return strings.Join(summary.Seeds, ", ")
}

const timeLayout = "2006-01-02 15:04:05 MST"
