package search

import "sync"

// FileResult is the per-file unit of the final report.
type FileResult struct {
	Path    string
	Matches []Match
}

// Store accumulates per-file matches from concurrent scan workers. Writes
// are mutually exclusive; Snapshot must only be called after every writer
// has been joined, which the orchestrator guarantees with its phase join.
type Store struct {
	mu      sync.Mutex
	matches map[string][]Match
	order   []string
}

func NewStore() *Store {
	return &Store{matches: make(map[string][]Match)}
}

// Record inserts or overwrites the entry for path. Empty match sets are
// ignored so files without occurrences never reach the report.
func (s *Store) Record(path string, matches []Match) {
	if len(matches) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[path]; !ok {
		s.order = append(s.order, path)
	}
	s.matches[path] = matches
}

// Len returns the number of files with at least one match.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Snapshot returns the accumulated results in insertion order.
func (s *Store) Snapshot() []FileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]FileResult, 0, len(s.order))
	for _, path := range s.order {
		results = append(results, FileResult{Path: path, Matches: s.matches[path]})
	}
	return results
}
