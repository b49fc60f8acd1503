package crawler

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// TestFrontier tests FIFO order and draining.
func TestFrontier(t *testing.T) {
	t.Parallel()

	var f Frontier[model.AuthorRef]
	f.Push(model.AuthorRef{ID: "a"})
	f.Push(model.AuthorRef{ID: "b"})

	if f.Len() != 2 {
		t.Fatalf("Len() = %d", f.Len())
	}

	drained := f.Drain()
	if len(drained) != 2 || drained[0].ID != "a" || drained[1].ID != "b" {
		t.Errorf("Drain() = %v", drained)
	}
	if f.Len() != 0 {
		t.Errorf("frontier not empty after Drain: %d", f.Len())
	}

	f.Push(model.AuthorRef{ID: "c"})
	if len(drained) != 2 {
		t.Error("pushing after Drain must not alter drained items")
	}
}

// TestVisited tests the check-and-insert set.
func TestVisited(t *testing.T) {
	t.Parallel()

	t.Run("add reports novelty", func(t *testing.T) {
		t.Parallel()

		v := NewVisited[model.WorkRef]()
		w := model.WorkRef{Owner: "o", Slug: "s"}

		if !v.Add(w) {
			t.Error("first Add should return true")
		}
		if v.Add(w) {
			t.Error("second Add should return false")
		}
		if v.Len() != 1 {
			t.Errorf("Len() = %d", v.Len())
		}
	})

	t.Run("concurrent adds admit one winner", func(t *testing.T) {
		t.Parallel()

		v := NewVisited[string]()
		var wins atomic.Int32
		var wg sync.WaitGroup

		for range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if v.Add("same") {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		if wins.Load() != 1 {
			t.Errorf("expected exactly one winner, got %d", wins.Load())
		}
	})
}
