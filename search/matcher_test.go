package search

import (
	"path/filepath"
	"reflect"
	"testing"

	"grepari/config"
)

func matcherFor(term string) *Matcher {
	return NewMatcher(&config.Config{SearchTerm: term})
}

func TestScanFileOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "aaa\n")

	got := matcherFor("aa").ScanFile(path)
	want := []Match{{Line: 1, Start: 0, End: 2}, {Line: 1, Start: 1, End: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("overlap: got %v, want %v", got, want)
	}
}

func TestScanFileCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "Whatever\n")

	got := matcherFor("whatever").ScanFile(path)
	want := []Match{{Line: 1, Start: 0, End: 8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("case folding: got %v, want %v", got, want)
	}
}

func TestScanFileLinePositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "foo\nwhatever bar\nWHATEVER\n")

	got := matcherFor("whatever").ScanFile(path)
	want := []Match{
		{Line: 2, Start: 0, End: 8},
		{Line: 3, Start: 0, End: 8},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions: got %v, want %v", got, want)
	}
}

func TestScanFileRuneOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "héllo whatever\n")

	got := matcherFor("whatever").ScanFile(path)
	// Offsets count runes of the decoded line, not bytes.
	want := []Match{{Line: 1, Start: 6, End: 14}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rune offsets: got %v, want %v", got, want)
	}
}

func TestScanFileCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "whatever\r\nwhatever")

	got := matcherFor("whatever").ScanFile(path)
	want := []Match{
		{Line: 1, Start: 0, End: 8},
		{Line: 2, Start: 0, End: 8},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("crlf: got %v, want %v", got, want)
	}
}

func TestScanFileNoMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "nothing here\n")

	if got := matcherFor("whatever").ScanFile(path); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestScanFileMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	if got := matcherFor("whatever").ScanFile(path); got != nil {
		t.Fatalf("missing file must contribute nothing, got %v", got)
	}
}

func TestScanFileSkipsOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	writeFile(t, path, "whatever whatever whatever\n")

	m := NewMatcher(&config.Config{SearchTerm: "whatever", MaxFileSize: 4})
	if got := m.ScanFile(path); got != nil {
		t.Fatalf("oversized file must be skipped, got %v", got)
	}
}
