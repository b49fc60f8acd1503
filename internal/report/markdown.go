package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRounds(md, summary)
	w.writeOutcomes(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// HistoryEntry is one stored crawl run for WriteHistory.
type HistoryEntry struct {
	ID      int64
	Summary *model.CrawlSummary
}

// WriteHistory outputs a table of past runs, most recent first.
func (w *MarkdownWriter) WriteHistory(entries []HistoryEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No crawl runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.Summary.StartedAt.Format(timeLayout),
			e.Summary.Duration().Round(time.Second).String(),
			strconv.Itoa(len(e.Summary.Rounds)),
			w.count(e.Summary.WorksVisited),
			w.count(e.Summary.AuthorsVisited),
			w.count(e.Summary.TotalComments()),
			statusText(e.Summary),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Duration", "Rounds", "Works", "Authors", "Comments", "Status"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Itchy Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seeds", seedList(summary)},
			{"Started", summary.StartedAt.Format(timeLayout)},
			{"Duration", summary.Duration().Round(time.Millisecond).String()},
			{"Rounds", strconv.Itoa(len(summary.Rounds)) + " of " + maxRoundsText(summary.MaxRounds)},
			{"Works visited", w.count(summary.WorksVisited)},
			{"Authors visited", w.count(summary.AuthorsVisited)},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// writeAlert writes an alert matching how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch summary.Reason {
	case model.StopError:
		md.Cautionf("The crawl aborted in round %d: %s. Saved results are partial.", len(summary.Rounds), summary.Error)
	case model.StopCancelled:
		md.Warningf("The crawl was cancelled in round %d. Saved results are partial.", len(summary.Rounds))
	case model.StopExhausted:
		md.Tip("Every reachable work and author was visited.")
	default:
		md.Note("The round limit was reached. Frontiers may still hold unvisited nodes.")
	}
	md.PlainText("")
}

// writeRounds writes the per-round table.
func (w *MarkdownWriter) writeRounds(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Rounds")
	md.PlainText("")

	if len(summary.Rounds) == 0 {
		md.PlainText("No rounds were run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Rounds))
	for i, r := range summary.Rounds {
		rows[i] = []string{
			strconv.Itoa(r.Round),
			w.count(r.WorksProcessed),
			w.count(r.WorksMissing),
			w.count(r.AuthorsProcessed),
			w.count(r.AuthorsMissing),
			w.count(r.CommentsHarvested),
			w.count(r.NewAuthors),
			w.count(r.NewWorks),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Round", "Works", "Missing works", "Authors", "Missing authors", "Comments", "New authors", "New works"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOutcomes writes a mermaid pie chart of processed and missing nodes.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, summary *model.CrawlSummary) {
	var worksMissing, authorsMissing int
	for _, r := range summary.Rounds {
		worksMissing += r.WorksMissing
		authorsMissing += r.AuthorsMissing
	}

	values := []struct {
		label string
		n     int
	}{
		{"Works", summary.TotalWorksProcessed()},
		{"Missing works", worksMissing},
		{"Authors", summary.TotalAuthorsProcessed()},
		{"Missing authors", authorsMissing},
	}

	total := 0
	for _, v := range values {
		total += v.n
	}
	if total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Processed nodes"),
		piechart.WithShowData(true),
	)
	for _, v := range values {
		if v.n > 0 {
			chart.LabelAndIntValue(v.label, uint64(v.n))
		}
	}

	md.H2("Node outcomes")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by itchy*")
}
