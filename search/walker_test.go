package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"grepari/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectCandidates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(root, "skip", "c.txt"), "c")
	writeFile(t, filepath.Join(root, "skip", "deep", "d.txt"), "d")

	cfg := &config.Config{
		StartPaths:  []string{root},
		ExcludeDirs: []string{filepath.Join(root, "skip")},
	}
	candidates, err := CollectCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", candidates)
	}
	for _, c := range candidates {
		if filepath.Base(c) == "c.txt" || filepath.Base(c) == "d.txt" {
			t.Fatalf("excluded subtree leaked: %s", c)
		}
	}
}

func TestCollectCandidatesDedupesOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	cfg := &config.Config{
		StartPaths:  []string{root, filepath.Join(root, "sub")},
		DedupeRoots: true,
	}
	candidates, err := CollectCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate after dedupe, got %v", candidates)
	}

	cfg.DedupeRoots = false
	candidates, err = CollectCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected duplicate yield without dedupe, got %v", candidates)
	}
}

func TestCollectCandidatesMissingRootFatal(t *testing.T) {
	cfg := &config.Config{
		StartPaths: []string{filepath.Join(t.TempDir(), "absent")},
	}
	if _, err := CollectCandidates(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestCollectCandidatesExcludedRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	cfg := &config.Config{
		StartPaths:  []string{root},
		ExcludeDirs: []string{root},
	}
	candidates, err := CollectCandidates(context.Background(), cfg)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected nothing under an excluded root, got %v", candidates)
	}
}
