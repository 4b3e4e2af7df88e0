package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

const Version = "1.2.0"

type Config struct {
	SearchTerm         string            `json:"search_term"`
	StartPaths         []string          `json:"start_paths"`
	ExcludeDirs        []string          `json:"exclude_dirs"`
	IncludeExtensions  []string          `json:"include_extensions"`
	ExcludeExtensions  []string          `json:"exclude_extensions"`
	OutputFormat       string            `json:"output_format"`
	OutputFileName     string            `json:"output_file_name"`
	ConcurrencyLevel   int               `json:"concurrency_level"`
	NiceLevel          string            `json:"nice_level"`
	LogLevel           string            `json:"log_level"`
	MaxFileSize        int64             `json:"max_file_size"`
	MaxIOPerSecond     int               `json:"max_io_per_second"`
	ContentReadMode    string            `json:"content_read_mode"`
	MmapMinSize        int64             `json:"mmap_min_size"`
	StreamChunkSize    int               `json:"stream_chunk_size"`
	DedupeRoots        bool              `json:"dedupe_roots"`
	NoProgress         bool              `json:"no_progress"`
	ConfigFile         string            `json:"config_file"`
	OtelEndpoint       string            `json:"otel_endpoint"`
	OtelFromEnv        bool              `json:"otel_from_env"`
	OtelHeaders        map[string]string `json:"otel_headers"`
	OtelServiceName    string            `json:"otel_service_name"`
	OtelTimeout        time.Duration     `json:"otel_timeout"`
	OtelExportPaths    bool              `json:"otel_export_paths"`
	ConcurrencySet     bool              `json:"-"`
}

func LoadConfig() (*Config, error) {
	now := time.Now().UTC()
	timestamp := now.Format("20060102-150405")
	cfg := &Config{
		StartPaths:      []string{"."},
		OutputFormat:    "csv",
		OutputFileName:  fmt.Sprintf("grepari-%s.csv", timestamp),
		NiceLevel:       "high",
		LogLevel:        "info",
		MaxFileSize:     10485760,
		MaxIOPerSecond:  0,
		ContentReadMode: "auto",
		MmapMinSize:     128 * 1024,
		StreamChunkSize: 256 * 1024,
		DedupeRoots:     true,
		OtelHeaders:     map[string]string{},
		OtelServiceName: "grepari",
		OtelTimeout:     5 * time.Second,
	}

	term := flag.String("term", "", "Search term (required).")
	startPath := flag.String("path", strings.Join(cfg.StartPaths, ","), fmt.Sprintf("Comma-separated list of root directories to search (default: %s).", strings.Join(cfg.StartPaths, ",")))
	excludeDirs := flag.String("exclude-dir", "", "Comma-separated list of directories to exclude, pruned before descent (default: none).")
	includeExts := flag.String("include-ext", "", "Comma-separated list of file extensions to include; empty means all (default: none).")
	excludeExts := flag.String("exclude-ext", "", "Comma-separated list of file extensions to exclude (default: none).")
	format := flag.String("format", cfg.OutputFormat, fmt.Sprintf("Output format: csv or ndjson (default: %s).", cfg.OutputFormat))
	output := flag.String("output", cfg.OutputFileName, "Output file name (default: grepari-<timestamp>.csv).")
	concurrency := flag.Int("concurrency", cfg.ConcurrencyLevel, "Worker pool size (default: detected logical CPU count).")
	nice := flag.String("nice", cfg.NiceLevel, fmt.Sprintf("Nice level: high, medium, or low (default: %s).", cfg.NiceLevel))
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	maxFileSize := flag.Int64("max-file-size", cfg.MaxFileSize, fmt.Sprintf("Maximum file size to scan in bytes (default: %d).", cfg.MaxFileSize))
	maxIO := flag.Int("max-io-per-second", cfg.MaxIOPerSecond, "Maximum file opens per second, 0 disables throttling (default: 0).")
	contentReadMode := flag.String("content-read-mode", cfg.ContentReadMode, "Content read mode: auto, stream, or mmap (default: auto).")
	mmapMinSize := flag.Int64("mmap-min-size", cfg.MmapMinSize, fmt.Sprintf("Minimum file size in bytes for the mmap read path (default: %d).", cfg.MmapMinSize))
	streamChunkSize := flag.Int("stream-chunk-size", cfg.StreamChunkSize, fmt.Sprintf("Streaming read chunk size in bytes (default: %d).", cfg.StreamChunkSize))
	dedupeRoots := flag.Bool("dedupe-roots", cfg.DedupeRoots, fmt.Sprintf("Deduplicate files reachable from overlapping roots (default: %t).", cfg.DedupeRoots))
	noProgress := flag.Bool("no-progress", cfg.NoProgress, "Disable the progress bars (default: false).")
	configFile := flag.String("config", "", "Path to JSON configuration file (default: none).")
	otelEndpoint := flag.String("otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP logs endpoint (default: none).")
	otelFromEnv := flag.Bool("otel-from-env", cfg.OtelFromEnv, "Allow OTEL endpoint fallback from OTEL environment variables (default: false).")
	otelHeaders := flag.String("otel-headers", "", "Comma-separated OTEL headers (key=value) for export (default: none).")
	otelServiceName := flag.String("otel-service-name", cfg.OtelServiceName, "OTEL service name for export (default: grepari).")
	otelTimeout := flag.Duration("otel-timeout", cfg.OtelTimeout, "OTEL export timeout (default: 5s).")
	otelExportPaths := flag.Bool("otel-export-paths", cfg.OtelExportPaths, "Include raw file paths in OTEL payloads (default: false).")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = displayHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("Grepari version %s\n", Version)
		os.Exit(0)
	}

	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "term":
			cfg.SearchTerm = *term
		case "path":
			cfg.StartPaths = parseCommaSeparated(*startPath)
		case "exclude-dir":
			cfg.ExcludeDirs = parseCommaSeparated(*excludeDirs)
		case "include-ext":
			cfg.IncludeExtensions = parseCommaSeparated(*includeExts)
		case "exclude-ext":
			cfg.ExcludeExtensions = parseCommaSeparated(*excludeExts)
		case "format":
			cfg.OutputFormat = strings.ToLower(*format)
		case "output":
			cfg.OutputFileName = *output
		case "concurrency":
			cfg.ConcurrencyLevel = *concurrency
			cfg.ConcurrencySet = true
		case "nice":
			cfg.NiceLevel = *nice
		case "log-level":
			cfg.LogLevel = *logLevel
		case "max-file-size":
			cfg.MaxFileSize = *maxFileSize
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "content-read-mode":
			cfg.ContentReadMode = strings.ToLower(strings.TrimSpace(*contentReadMode))
		case "mmap-min-size":
			cfg.MmapMinSize = *mmapMinSize
		case "stream-chunk-size":
			cfg.StreamChunkSize = *streamChunkSize
		case "dedupe-roots":
			cfg.DedupeRoots = *dedupeRoots
		case "no-progress":
			cfg.NoProgress = *noProgress
		case "otel-endpoint":
			cfg.OtelEndpoint = strings.TrimSpace(*otelEndpoint)
		case "otel-from-env":
			cfg.OtelFromEnv = *otelFromEnv
		case "otel-headers":
			cfg.OtelHeaders = parseHeaders(*otelHeaders)
		case "otel-service-name":
			cfg.OtelServiceName = strings.TrimSpace(*otelServiceName)
		case "otel-timeout":
			cfg.OtelTimeout = *otelTimeout
		case "otel-export-paths":
			cfg.OtelExportPaths = *otelExportPaths
		}
	})

	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.ContentReadMode = strings.ToLower(strings.TrimSpace(cfg.ContentReadMode))
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "csv"
	}
	if cfg.ContentReadMode == "" {
		cfg.ContentReadMode = "auto"
	}
	if len(cfg.StartPaths) == 0 {
		cfg.StartPaths = []string{"."}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func displayHelp() {
	fmt.Println("Grepari - Concurrent Substring Search")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  grepari --term <text> [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  grepari --term whatever --path \"/home,/var\"")
	fmt.Println("  grepari --term TODO --include-ext \".go,.md\" --exclude-dir \"/home/user/vendor\"")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	if _, ok := raw["concurrency_level"]; ok {
		cfg.ConcurrencySet = true
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.SearchTerm) == "" {
		return fmt.Errorf("a non-empty search term is required (--term)")
	}
	if len(cfg.StartPaths) == 0 {
		return fmt.Errorf("at least one start path is required")
	}
	if cfg.OutputFileName == "" {
		return fmt.Errorf("output file name must not be empty")
	}
	if cfg.OutputFormat != "csv" && cfg.OutputFormat != "ndjson" {
		return fmt.Errorf("invalid output format: %s (csv or ndjson)", cfg.OutputFormat)
	}
	if cfg.ConcurrencyLevel < 0 {
		return fmt.Errorf("concurrency level must be zero or positive")
	}
	if cfg.ConcurrencySet && cfg.ConcurrencyLevel <= 0 {
		return fmt.Errorf("concurrency level must be positive")
	}
	if cfg.NiceLevel != "high" && cfg.NiceLevel != "medium" && cfg.NiceLevel != "low" {
		return fmt.Errorf("invalid nice level: %s", cfg.NiceLevel)
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max-file-size must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.ContentReadMode != "auto" && cfg.ContentReadMode != "stream" && cfg.ContentReadMode != "mmap" {
		return fmt.Errorf("invalid content-read-mode value: %s", cfg.ContentReadMode)
	}
	if cfg.MmapMinSize < 0 {
		return fmt.Errorf("mmap-min-size must be zero or positive")
	}
	if cfg.StreamChunkSize <= 0 {
		return fmt.Errorf("stream-chunk-size must be positive")
	}
	if cfg.OtelTimeout < 0 {
		return fmt.Errorf("otel-timeout must be zero or positive")
	}
	if cfg.OtelEndpoint != "" {
		if !strings.HasPrefix(cfg.OtelEndpoint, "http://") && !strings.HasPrefix(cfg.OtelEndpoint, "https://") {
			return fmt.Errorf("otel-endpoint must include scheme (http or https)")
		}
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	out := items[:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseHeaders(input string) map[string]string {
	headers := make(map[string]string)
	if input == "" {
		return headers
	}
	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(parts[1])
	}
	return headers
}
