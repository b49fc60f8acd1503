package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.CrawlSummary {
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return &model.CrawlSummary{
		Seeds:      []string{"https://chasefox.itch.io/carrot-the-first-seed"},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		MaxRounds:  3,
		Rounds: []model.RoundStats{
			{
				Round:             1,
				WorksProcessed:    1,
				AuthorsProcessed:  2,
				AuthorsMissing:    1,
				CommentsHarvested: 1234,
				NewAuthors:        3,
				NewWorks:          4,
				Phases:            []string{"expand-works", "expand-authors"},
			},
			{
				Round:             2,
				WorksProcessed:    4,
				WorksMissing:      1,
				AuthorsProcessed:  5,
				CommentsHarvested: 10,
			},
		},
		WorksVisited:   5,
		AuthorsVisited: 8,
		Reason:         model.StopRoundLimit,
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, want %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"ITCHY CRAWL SUMMARY",
			"https://chasefox.itch.io/carrot-the-first-seed",
			"2026-03-04 05:06:07 UTC",
			"1.5s",
			"2 of 3",
			"Round Limit",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("formats counts with separators", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "1,244") {
			t.Errorf("expected total comments 1,244 in output:\n%s", buf.String())
		}
	})

	t.Run("phases only in verbose mode", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "phases:") {
			t.Error("quiet output should not list phases")
		}
		if !strings.Contains(verbose.String(), "phases: expand-works, expand-authors") {
			t.Error("verbose output should list phases")
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := &model.CrawlSummary{Reason: model.StopExhausted}
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No rounds were run.") {
			t.Error("expected empty rounds notice")
		}
		if !strings.Contains(output, "0 of unlimited") {
			t.Error("expected unlimited round limit")
		}
	})

	t.Run("error status includes message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := createTestSummary()
		summary.Reason = model.StopError
		summary.Error = "round 2: status 503"
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Error - round 2: status 503") {
			t.Errorf("unexpected status in output:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Itchy Crawl Summary",
			"## Rounds",
			"## Node outcomes",
			"```mermaid",
			"pie",
			"Missing authors",
			"Summary generated by itchy",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("alert follows stop reason", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			reason model.StopReason
			want   string
		}{
			{model.StopError, "[!CAUTION]"},
			{model.StopCancelled, "[!WARNING]"},
			{model.StopExhausted, "[!TIP]"},
			{model.StopRoundLimit, "[!NOTE]"},
		}

		for _, tt := range tests {
			t.Run(string(tt.reason), func(t *testing.T) {
				t.Parallel()

				var buf bytes.Buffer
				summary := createTestSummary()
				summary.Reason = tt.reason
				if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("expected %s alert in output:\n%s", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("no chart without nodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := &model.CrawlSummary{Reason: model.StopExhausted}
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart for an empty run")
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		entries := []HistoryEntry{{ID: 7, Summary: createTestSummary()}}
		if _, err := NewMarkdownWriter(&buf).WriteHistory(entries); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Crawl History") || !strings.Contains(output, "Round Limit") {
			t.Errorf("unexpected history output:\n%s", output)
		}

		buf.Reset()
		if _, err := NewMarkdownWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No crawl runs recorded.") {
			t.Error("expected empty history notice")
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Count(output, "\n") != 1 {
			t.Errorf("expected single-line output, got:\n%s", output)
		}

		var got model.CrawlSummary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.WorksVisited != 5 || len(got.Rounds) != 2 || got.Reason != model.StopRoundLimit {
			t.Errorf("unexpected summary: %+v", got)
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"seeds\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("version wrapper", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" || got.Summary == nil || got.Summary.AuthorsVisited != 8 {
			t.Errorf("unexpected report: %+v", got)
		}
	})
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(*model.CrawlSummary) (int, error) {
	return 0, errors.New("boom")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		n, err := mw.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("n = %d, want %d", n, a.Len()+b.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))
		if _, err := mw.Write(createTestSummary()); err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Error("writers after the failing one should not run")
		}
	})
}
