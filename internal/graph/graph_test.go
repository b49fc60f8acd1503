package graph

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/mati7337/itchy-graphs/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySource is an in-memory Source.
type memorySource struct {
	works   []model.WorkResult
	authors []model.AuthorResult
	err     error
}

func (s memorySource) LoadWorks() ([]model.WorkResult, error)     { return s.works, s.err }
func (s memorySource) LoadAuthors() ([]model.AuthorResult, error) { return s.authors, nil }

func comments(authors ...string) []model.Comment {
	out := make([]model.Comment, len(authors))
	for i, a := range authors {
		out[i] = model.Comment{ID: a, AuthorID: a}
	}
	return out
}

func indexOf(t *testing.T, sets map[string][]string) *Index {
	t.Helper()

	idx := NewIndex()
	for work, commenters := range sets {
		for _, c := range commenters {
			idx.AddCommenter(work, c)
		}
	}
	return idx
}

// TestLoadIndex tests building the index from both node kinds.
func TestLoadIndex(t *testing.T) {
	t.Parallel()

	t.Run("merges works and author activity", func(t *testing.T) {
		t.Parallel()

		src := memorySource{
			works: []model.WorkResult{
				{Owner: "a", Slug: "x", Comments: comments("u1", "u2", "u1")},
			},
			authors: []model.AuthorResult{
				{Author: "u3", Activity: []model.ActivityEntry{
					{SourceURL: "https://a.itch.io/x/comments"},
					{SourceURL: "https://b.itch.io/y/comments"},
					{SourceURL: "https://itch.io/t/1/topic"},
					{SourceURL: "https://itch.io/comments"},
				}},
			},
		}

		idx, err := LoadIndex(src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		works := idx.Works()
		if len(works) != 2 || works[0] != "a.itch.io/x" || works[1] != "b.itch.io/y" {
			t.Errorf("Works() = %v", works)
		}
		if idx.CommenterCount("a.itch.io/x") != 3 {
			t.Errorf("a.itch.io/x has %d commenters, want 3", idx.CommenterCount("a.itch.io/x"))
		}
		if idx.CommenterCount("b.itch.io/y") != 1 {
			t.Errorf("b.itch.io/y has %d commenters, want 1", idx.CommenterCount("b.itch.io/y"))
		}
		if idx.Commenters() != 3 {
			t.Errorf("Commenters() = %d", idx.Commenters())
		}
	})

	t.Run("propagates load errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		if _, err := LoadIndex(memorySource{err: boom}); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}

// TestParseMethod tests method names.
func TestParseMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"jaccard", Jaccard, false},
		{"JACCARD", Jaccard, false},
		{"overlap_coefficient", OverlapCoefficient, false},
		{"cosine", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMethod(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMethod) {
					t.Errorf("expected ErrUnknownMethod, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, %v", tt.input, got, err)
			}
			if got.String() != MethodNameJaccard && got.String() != MethodNameOverlapCoefficient {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

// TestBuild tests edge weights and filtering.
func TestBuild(t *testing.T) {
	t.Parallel()

	sets := map[string][]string{
		"a.itch.io/1": {"u1", "u2", "u3", "u4"},
		"b.itch.io/2": {"u3", "u4"},
		"c.itch.io/3": {"u5", "u6"},
		"d.itch.io/4": {"u1"},
	}

	t.Run("jaccard", func(t *testing.T) {
		t.Parallel()

		opts := Options{NodeThreshold: 2, EdgeThreshold: 0.01, Method: Jaccard, Logger: quietLogger()}
		edges, err := Build(context.Background(), indexOf(t, sets), opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(edges) != 1 {
			t.Fatalf("expected 1 edge, got %+v", edges)
		}
		e := edges[0]
		if e.A != "a.itch.io/1" || e.B != "b.itch.io/2" || math.Abs(e.Weight-0.5) > 1e-9 {
			t.Errorf("unexpected edge %+v", e)
		}
	})

	t.Run("overlap coefficient", func(t *testing.T) {
		t.Parallel()

		opts := Options{NodeThreshold: 2, EdgeThreshold: 0.01, Method: OverlapCoefficient, Concurrency: 2, Logger: quietLogger()}
		edges, err := Build(context.Background(), indexOf(t, sets), opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(edges) != 1 || math.Abs(edges[0].Weight-1.0) > 1e-9 {
			t.Errorf("unexpected edges %+v", edges)
		}
	})

	t.Run("zero thresholds keep every pair in order", func(t *testing.T) {
		t.Parallel()

		opts := Options{Method: Jaccard, Concurrency: 3, Logger: quietLogger()}
		edges, err := Build(context.Background(), indexOf(t, sets), opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(edges) != 6 {
			t.Fatalf("expected 6 edges, got %d", len(edges))
		}
		for i := 1; i < len(edges); i++ {
			prev, cur := edges[i-1], edges[i]
			if prev.A > cur.A || (prev.A == cur.A && prev.B >= cur.B) {
				t.Errorf("edges out of order: %+v then %+v", prev, cur)
			}
		}
	})

	t.Run("edge threshold drops weak edges", func(t *testing.T) {
		t.Parallel()

		opts := Options{NodeThreshold: 1, EdgeThreshold: 0.3, Method: Jaccard, Logger: quietLogger()}
		edges, err := Build(context.Background(), indexOf(t, sets), opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// a-b 0.5 passes, a-d 0.25 does not.
		if len(edges) != 1 {
			t.Errorf("expected 1 edge, got %+v", edges)
		}
	})

	t.Run("rejects quotes in names", func(t *testing.T) {
		t.Parallel()

		idx := indexOf(t, map[string][]string{`bad".itch.io/x`: {"u1"}})
		_, err := Build(context.Background(), idx, Options{NodeThreshold: 1, Logger: quietLogger()})
		if !errors.Is(err, ErrQuoteInName) {
			t.Errorf("expected ErrQuoteInName, got %v", err)
		}
	})

	t.Run("quotes below the node threshold are ignored", func(t *testing.T) {
		t.Parallel()

		idx := indexOf(t, map[string][]string{`bad".itch.io/x`: {"u1"}})
		if _, err := Build(context.Background(), idx, Options{NodeThreshold: 2, Logger: quietLogger()}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Build(ctx, indexOf(t, sets), Options{Logger: quietLogger()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestWriteDOT tests the DOT output format.
func TestWriteDOT(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	edges := []Edge{
		{A: "a.itch.io/1", B: "b.itch.io/2", Weight: 0.5},
		{A: "a.itch.io/1", B: "c.itch.io/3", Weight: 1.0 / 3.0},
	}
	if err := WriteDOT(&buf, edges); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "graph itch {\n" +
		"\t\"a.itch.io/1\" -- \"b.itch.io/2\"[weight=0.5]\n" +
		"\t\"a.itch.io/1\" -- \"c.itch.io/3\"[weight=0.333333]\n" +
		"}\n"
	if buf.String() != want {
		t.Errorf("WriteDOT() =\n%s\nwant\n%s", buf.String(), want)
	}
}

// TestDefaultOptions tests the default build options.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if opts.NodeThreshold != DefaultNodeThreshold || opts.EdgeThreshold != DefaultEdgeThreshold || opts.Method != Jaccard {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}
