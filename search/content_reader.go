package search

import (
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

var openMmapReader = mmap.Open

// readFileContent loads a file's bytes for scanning. Files larger than
// maxSize are skipped (nil content, nil error). Mode "auto" picks mmap for
// files at or above mmapMinSize and streams the rest.
func readFileContent(path string, maxSize int64, mode string, mmapMinSize int64, chunkSize int) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = 256 * 1024
	}
	if mmapMinSize <= 0 {
		mmapMinSize = 128 * 1024
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, nil
	}

	switch mode {
	case "mmap":
		return readContentMmap(path, info.Size())
	case "stream":
		return readContentStream(path, chunkSize)
	default:
		if info.Size() >= mmapMinSize {
			if content, err := readContentMmap(path, info.Size()); err == nil {
				return content, nil
			}
		}
		return readContentStream(path, chunkSize)
	}
}

func readContentMmap(path string, size int64) ([]byte, error) {
	r, err := openMmapReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if size <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

func readContentStream(path string, chunkSize int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var content []byte
	if stat, err := file.Stat(); err == nil && stat.Size() > 0 {
		content = make([]byte, 0, stat.Size())
	}
	buffer := make([]byte, chunkSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			content = append(content, buffer[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				return content, nil
			}
			return nil, err
		}
	}
}
