package search

import (
	"fmt"
	"sync"
	"testing"
)

func TestStoreIgnoresEmpty(t *testing.T) {
	s := NewStore()
	s.Record("a.txt", nil)
	s.Record("b.txt", []Match{})
	if s.Len() != 0 {
		t.Fatalf("empty match sets must not create entries, got %d", s.Len())
	}
}

func TestStoreInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Record("b.txt", []Match{{Line: 1, Start: 0, End: 1}})
	s.Record("a.txt", []Match{{Line: 2, Start: 0, End: 1}})
	s.Record("b.txt", []Match{{Line: 3, Start: 0, End: 1}})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("overwrite must not duplicate entries: %v", snap)
	}
	if snap[0].Path != "b.txt" || snap[1].Path != "a.txt" {
		t.Fatalf("unexpected order: %v", snap)
	}
	if snap[0].Matches[0].Line != 3 {
		t.Fatalf("overwrite must replace matches: %v", snap[0].Matches)
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := NewStore()
	const writers = 32
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("file-%d.txt", i)
			s.Record(path, []Match{{Line: i + 1, Start: 0, End: 1}})
		}(i)
	}
	wg.Wait()

	if s.Len() != writers {
		t.Fatalf("lost updates: got %d entries, want %d", s.Len(), writers)
	}
	seen := make(map[string]bool)
	for _, r := range s.Snapshot() {
		if seen[r.Path] {
			t.Fatalf("duplicate entry for %s", r.Path)
		}
		seen[r.Path] = true
	}
}
