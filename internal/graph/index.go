package graph

import (
	"fmt"
	"sort"

	"github.com/mati7337/itchy-graphs/internal/itch"
	"github.com/mati7337/itchy-graphs/internal/model"
)

// Source provides saved crawl results. *store.Store implements it.
type Source interface {
	LoadWorks() ([]model.WorkResult, error)
	LoadAuthors() ([]model.AuthorResult, error)
}

// Index maps each work name to the set of its commenters. Commenter names
// are interned to small integers.
type Index struct {
	works      map[string]map[int]struct{}
	commenters map[string]int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		works:      make(map[string]map[int]struct{}),
		commenters: make(map[string]int),
	}
}

// WorkName returns the node name of a work in the graph,
// "owner.itch.io/slug".
func WorkName(ref model.WorkRef) string {
	return ref.Owner + "." + itch.Domain + "/" + ref.Slug
}

// AddCommenter records that commenter posted on work.
func (idx *Index) AddCommenter(work, commenter string) {
	id, ok := idx.commenters[commenter]
	if !ok {
		id = len(idx.commenters)
		idx.commenters[commenter] = id
	}

	set, ok := idx.works[work]
	if !ok {
		set = make(map[int]struct{})
		idx.works[work] = set
	}
	set[id] = struct{}{}
}

// Works returns the indexed work names in sorted order.
func (idx *Index) Works() []string {
	names := make([]string, 0, len(idx.works))
	for name := range idx.works {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommenterCount returns how many distinct commenters work has.
func (idx *Index) CommenterCount(work string) int {
	return len(idx.works[work])
}

// Commenters returns the number of distinct commenters in the index.
func (idx *Index) Commenters() int {
	return len(idx.commenters)
}

// LoadIndex builds an index from saved results. Works are read before
// authors. Author activity entries that are not game threads are skipped.
func LoadIndex(src Source) (*Index, error) {
	idx := NewIndex()

	works, err := src.LoadWorks()
	if err != nil {
		return nil, fmt.Errorf("failed to load works: %w", err)
	}
	for _, w := range works {
		name := WorkName(w.Ref())
		for _, c := range w.Comments {
			idx.AddCommenter(name, c.AuthorID)
		}
	}

	authors, err := src.LoadAuthors()
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	for _, a := range authors {
		for _, entry := range a.Activity {
			if !itch.IsWorkCommentsURL(entry.SourceURL) {
				continue
			}
			ref, ok := itch.ParseWorkRef(entry.SourceURL)
			if !ok {
				continue
			}
			idx.AddCommenter(WorkName(ref), a.Author)
		}
	}

	return idx, nil
}
