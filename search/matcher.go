package search

import (
	"bytes"
	"unicode"

	"grepari/config"
	"grepari/logger"
)

// Match is one occurrence of the search term: 1-based line number and
// 0-based rune offsets into the decoded line, End = Start + term length.
type Match struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Matcher scans single files for every overlapping, case-insensitive
// occurrence of one term.
type Matcher struct {
	folded          []rune
	maxFileSize     int64
	contentReadMode string
	mmapMinSize     int64
	streamChunkSize int
}

func NewMatcher(cfg *config.Config) *Matcher {
	folded := []rune(cfg.SearchTerm)
	for i, r := range folded {
		folded[i] = unicode.ToLower(r)
	}
	return &Matcher{
		folded:          folded,
		maxFileSize:     cfg.MaxFileSize,
		contentReadMode: cfg.ContentReadMode,
		mmapMinSize:     cfg.MmapMinSize,
		streamChunkSize: cfg.StreamChunkSize,
	}
}

// ScanFile returns every match in the file, ordered by line and then by
// start offset. Read failures are logged and yield no matches; the file is
// not retried.
func (m *Matcher) ScanFile(path string) []Match {
	content, err := readFileContent(path, m.maxFileSize, m.contentReadMode, m.mmapMinSize, m.streamChunkSize)
	if err != nil {
		logger.Warnf("Error reading file %s: %v", path, err)
		return nil
	}
	if content == nil {
		return nil
	}

	var matches []Match
	lineNo := 0
	for line := range splitLines(content) {
		lineNo++
		matches = m.appendLineMatches(matches, line, lineNo)
	}
	return matches
}

// splitLines yields each line of content with the terminator stripped. A
// trailing newline does not produce a final empty line.
func splitLines(content []byte) func(func([]byte) bool) {
	return func(yield func([]byte) bool) {
		for len(content) > 0 {
			line := content
			if i := bytes.IndexByte(content, '\n'); i >= 0 {
				line = content[:i]
				content = content[i+1:]
			} else {
				content = nil
			}
			line = bytes.TrimSuffix(line, []byte{'\r'})
			if !yield(line) {
				return
			}
		}
	}
}

// appendLineMatches records every overlapping occurrence of the folded term
// in one decoded line. A match starting at offset p never suppresses one
// starting at p+1.
func (m *Matcher) appendLineMatches(matches []Match, line []byte, lineNo int) []Match {
	if len(m.folded) == 0 {
		return matches
	}
	runes := []rune(string(line))
	limit := len(runes) - len(m.folded)
	for start := 0; start <= limit; start++ {
		hit := true
		for j, want := range m.folded {
			if unicode.ToLower(runes[start+j]) != want {
				hit = false
				break
			}
		}
		if hit {
			matches = append(matches, Match{
				Line:  lineNo,
				Start: start,
				End:   start + len(m.folded),
			})
		}
	}
	return matches
}
