package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Method selects how an edge weight is computed.
type Method int

const (
	// Jaccard weighs an edge by |A ∩ B| / |A ∪ B|.
	Jaccard Method = iota

	// OverlapCoefficient weighs an edge by |A ∩ B| / min(|A|, |B|).
	OverlapCoefficient
)

// Method names accepted by ParseMethod.
const (
	MethodNameJaccard            = "jaccard"
	MethodNameOverlapCoefficient = "overlap_coefficient"
)

// Default build options.
const (
	DefaultNodeThreshold = 3
	DefaultEdgeThreshold = 0.1
)

var (
	// ErrUnknownMethod is returned by ParseMethod for an unknown name.
	ErrUnknownMethod = errors.New("unknown similarity method")

	// ErrQuoteInName is returned when a work name contains a double quote,
	// which DOT output does not escape.
	ErrQuoteInName = errors.New("work name contains a double-quote character")
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case Jaccard:
		return MethodNameJaccard
	case OverlapCoefficient:
		return MethodNameOverlapCoefficient
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a method name.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case MethodNameJaccard:
		return Jaccard, nil
	case MethodNameOverlapCoefficient:
		return OverlapCoefficient, nil
	default:
		return 0, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownMethod, name,
			MethodNameJaccard, MethodNameOverlapCoefficient)
	}
}

// Options configures Build.
type Options struct {
	// NodeThreshold is the minimum number of commenters a work needs to
	// appear in the graph.
	NodeThreshold int

	// EdgeThreshold is the minimum weight of an emitted edge.
	EdgeThreshold float64

	// Method selects the weight function.
	Method Method

	// Concurrency limits the number of rows computed in parallel.
	// Zero or less uses runtime.GOMAXPROCS(0).
	Concurrency int

	// Logger receives progress messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default build options.
func DefaultOptions() Options {
	return Options{
		NodeThreshold: DefaultNodeThreshold,
		EdgeThreshold: DefaultEdgeThreshold,
		Method:        Jaccard,
	}
}

// Edge is a weighted undirected link between two works. A sorts before B.
type Edge struct {
	A      string
	B      string
	Weight float64
}

// Build computes the edges between every pair of works that pass the node
// threshold. Works are taken in sorted order and edges are returned in
// (A, B) order, so the output does not depend on scheduling.
func Build(ctx context.Context, idx *Index, opts Options) ([]Edge, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	var nodes []string
	for _, name := range idx.Works() {
		if idx.CommenterCount(name) < opts.NodeThreshold {
			continue
		}
		if strings.Contains(name, `"`) {
			return nil, fmt.Errorf("%w: %s", ErrQuoteInName, name)
		}
		nodes = append(nodes, name)
	}

	logger.Info("building similarity graph",
		"works", len(nodes),
		"method", opts.Method.String(),
		"concurrency", concurrency,
	)

	// Each goroutine owns one row, so rows need no lock.
	rows := make([][]Edge, len(nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range nodes {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			setA := idx.works[nodes[i]]
			var row []Edge
			for j := i + 1; j < len(nodes); j++ {
				setB := idx.works[nodes[j]]
				w := weight(opts.Method, setA, setB)
				if w < opts.EdgeThreshold {
					continue
				}
				row = append(row, Edge{A: nodes[i], B: nodes[j], Weight: w})
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var edges []Edge
	for _, row := range rows {
		edges = append(edges, row...)
	}

	logger.Info("similarity graph built", "edges", len(edges))
	return edges, nil
}

// weight returns the similarity of two commenter sets.
func weight(method Method, a, b map[int]struct{}) float64 {
	small, big := a, b
	if len(small) > len(big) {
		small, big = big, small
	}

	shared := 0
	for id := range small {
		if _, ok := big[id]; ok {
			shared++
		}
	}

	switch method {
	case OverlapCoefficient:
		if len(small) == 0 {
			return 0
		}
		return float64(shared) / float64(len(small))
	default:
		union := len(a) + len(b) - shared
		if union == 0 {
			return 0
		}
		return float64(shared) / float64(union)
	}
}
