package utils

import (
	"path/filepath"
	"strings"
)

// UnderAny reports whether path equals one of the given directories or lies
// anywhere beneath one. The test is a path-component ancestor check on
// absolute cleaned paths, never a substring match.
func UnderAny(path string, dirs []string) bool {
	if len(dirs) == 0 {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absDir, absPath)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// NormalizeExts lowercases extensions and ensures a leading dot, so ".TXT",
// "txt" and ".txt" all key the same set entry. Empty entries are dropped.
func NormalizeExts(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
