package search

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"grepari/config"
	"grepari/logger"
	"grepari/utils"

	"github.com/h2non/filetype"
)

// sniffBytes is how much of a file's head is inspected for decodability.
const sniffBytes = 1024

// Filter decides whether a discovered path is worth scanning.
type Filter struct {
	excludeDirs []string
	includeExts map[string]struct{}
	excludeExts map[string]struct{}
}

func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		excludeDirs: cfg.ExcludeDirs,
		includeExts: utils.NormalizeExts(cfg.IncludeExtensions),
		excludeExts: utils.NormalizeExts(cfg.ExcludeExtensions),
	}
}

// Searchable reports whether the file at path should be scanned. It never
// fails: any I/O problem is logged and the file is treated as unsearchable.
func (f *Filter) Searchable(path string) bool {
	if utils.UnderAny(path, f.excludeDirs) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	if len(f.includeExts) > 0 {
		if _, ok := f.includeExts[ext]; !ok {
			return false
		}
	}
	if _, ok := f.excludeExts[ext]; ok {
		return false
	}

	head, err := readHead(path, sniffBytes)
	if err != nil {
		logger.Warnf("Unable to read %s: %v", path, err)
		return false
	}
	if len(head) == 0 {
		// Empty files decode trivially.
		return true
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		if !strings.HasPrefix(kind.MIME.Value, "text/") {
			return false
		}
	}
	return decodesAsText(head)
}

// decodesAsText mirrors a strict "read the head as UTF-8" check: the sample
// must be valid UTF-8, free of NUL bytes, and not dominated by control
// characters. A trailing rune cut off by the sample boundary is ignored.
func decodesAsText(sample []byte) bool {
	sample = trimPartialRune(sample)
	if !utf8.Valid(sample) {
		return false
	}
	var control int
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			control++
		}
	}
	return control <= len(sample)/10
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of a sample
// truncated at sniffBytes, so the cut itself never fails the check.
func trimPartialRune(sample []byte) []byte {
	for i := 0; i < utf8.UTFMax && i < len(sample); i++ {
		b := sample[len(sample)-1-i]
		if b < utf8.RuneSelf {
			return sample
		}
		if b >= 0xC0 {
			// Start byte of a multi-byte rune: keep it only if complete.
			if utf8.RuneStart(b) && utf8.Valid(sample[len(sample)-1-i:]) {
				return sample
			}
			return sample[:len(sample)-1-i]
		}
	}
	return sample
}

func readHead(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}
