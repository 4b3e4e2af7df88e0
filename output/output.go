package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"grepari/config"
	"grepari/logger"
)

const SchemaVersion = "1.0"

// Position is one serialized match: 1-based line, 0-based rune offsets.
type Position struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

type Metrics struct {
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	TotalFiles      int     `json:"total_files"`
	SearchableFiles int     `json:"searchable_files"`
	MatchedFiles    int     `json:"matched_files"`
	TotalMatches    int     `json:"total_matches"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
}

type resultRecord struct {
	RecordType string     `json:"record_type"`
	Path       string     `json:"path"`
	Count      int        `json:"count"`
	Positions  []Position `json:"positions"`
}

type metricsRecord struct {
	RecordType string `json:"record_type"`
	Metrics
}

// Writer persists report rows to a single output file, CSV or NDJSON.
// Safe for concurrent use.
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	csvw    *csv.Writer
	mu      sync.Mutex
	format  string
	metrics *Metrics
	otel    *otelLogger
}

func New(cfg *config.Config, m *Metrics) (*Writer, error) {
	format := strings.ToLower(cfg.OutputFormat)
	if format == "" {
		format = "csv"
	}

	f, err := os.OpenFile(cfg.OutputFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		file:    f,
		buf:     bufio.NewWriterSize(f, 1024*1024),
		format:  format,
		metrics: m,
	}
	if format == "csv" {
		w.csvw = csv.NewWriter(w.buf)
		if err := w.csvw.Write([]string{"File Path", "Occurrence Count", "Positions"}); err != nil {
			f.Close()
			return nil, err
		}
		w.csvw.Flush()
	}
	if err := w.buf.Flush(); err != nil {
		f.Close()
		return nil, err
	}

	otel, err := newOtelLogger(cfg)
	if err != nil {
		logger.Warnf("OTEL export disabled: %v", err)
	} else {
		w.otel = otel
	}
	return w, nil
}

// WriteResult appends one report row. A write failure is returned to the
// caller and treated as fatal for the run.
func (w *Writer) WriteResult(path string, positions []Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.format {
	case "csv":
		row := []string{path, strconv.Itoa(len(positions)), FormatPositions(positions)}
		if err := w.csvw.Write(row); err != nil {
			return err
		}
		w.csvw.Flush()
		if err := w.csvw.Error(); err != nil {
			return err
		}
	default:
		data, err := json.Marshal(resultRecord{
			RecordType: "result",
			Path:       path,
			Count:      len(positions),
			Positions:  positions,
		})
		if err != nil {
			return err
		}
		if _, err := w.buf.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	w.otel.EmitResult(path, len(positions))
	return nil
}

func (w *Writer) SetMetrics(m Metrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = &m
}

// Close finalizes the report. NDJSON output gains a trailing metrics
// record; the CSV schema stays rows-only and metrics go to the log and the
// OTEL exporter.
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.format != "csv" && w.metrics != nil {
		if data, err := json.Marshal(metricsRecord{RecordType: "metrics", Metrics: *w.metrics}); err == nil {
			_, _ = w.buf.Write(append(data, '\n'))
		}
	}
	_ = w.buf.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()

	if w.metrics != nil {
		w.otel.EmitMetrics(w.metrics)
	}
	w.otel.Shutdown()
}

// FormatPositions serializes match positions as a list of
// (line, start, end) triples, e.g. "[(2, 4, 13), (3, 0, 9)]".
func FormatPositions(positions []Position) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range positions {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d, %d, %d)", p.Line, p.Start, p.End)
	}
	b.WriteByte(']')
	return b.String()
}
