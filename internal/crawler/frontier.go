package crawler

import "sync"

// Frontier is an ordered list of nodes scheduled for processing.
// It is a plain FIFO work list; deduplication is the job of Visited.
type Frontier[T comparable] struct {
	items []T
}

// Push appends item to the end of the frontier.
func (f *Frontier[T]) Push(item T) {
	f.items = append(f.items, item)
}

// Len returns the number of scheduled nodes.
func (f *Frontier[T]) Len() int {
	return len(f.items)
}

// Drain returns the scheduled nodes and empties the frontier.
func (f *Frontier[T]) Drain() []T {
	items := f.items
	f.items = nil
	return items
}

// Visited is the set of nodes ever scheduled in a crawl. It only grows.
type Visited[T comparable] struct {
	mu   sync.Mutex
	seen map[T]struct{}
}

// NewVisited creates an empty set.
func NewVisited[T comparable]() *Visited[T] {
	return &Visited[T]{seen: make(map[T]struct{})}
}

// Add inserts key and reports whether it was new. The check and the insert
// happen under one lock, so concurrent callers never both see true.
func (v *Visited[T]) Add(key T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Len returns the number of keys in the set.
func (v *Visited[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.seen)
}
