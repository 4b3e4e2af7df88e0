package search

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileContentModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	body := strings.Repeat("line of text\n", 100)
	writeFile(t, path, body)

	for _, mode := range []string{"auto", "stream", "mmap"} {
		content, err := readFileContent(path, 0, mode, 1, 64)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !bytes.Equal(content, []byte(body)) {
			t.Fatalf("%s: content mismatch (%d bytes)", mode, len(content))
		}
	}
}

func TestReadFileContentSkipsOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	writeFile(t, path, "0123456789")

	content, err := readFileContent(path, 4, "stream", 0, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if content != nil {
		t.Fatalf("oversized file must be skipped, got %q", content)
	}
}

func TestReadFileContentMissing(t *testing.T) {
	if _, err := readFileContent(filepath.Join(t.TempDir(), "absent"), 0, "auto", 0, 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
