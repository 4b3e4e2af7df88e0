package search

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"grepari/config"
	"grepari/logger"
	"grepari/output"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"golang.org/x/time/rate"
)

// Run executes the search pipeline: collect candidates from every root,
// filter them in parallel, scan the searchable subset in parallel, and emit
// one report row per matched file. The two parallel phases are separated by
// a full join, so no file is scanned before its filter decision is known.
func Run(ctx context.Context, cfg *config.Config, metrics *output.Metrics, w *output.Writer) error {
	adjustConcurrency(cfg)

	candidates, err := CollectCandidates(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Infof("Total files collected: %d", len(candidates))
	metrics.TotalFiles = len(candidates)

	var ioLimiter *rate.Limiter
	if cfg.MaxIOPerSecond > 0 {
		ioLimiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	filter := NewFilter(cfg)
	var (
		mu         sync.Mutex
		searchable []string
	)
	runPool(ctx, cfg, "Filtering files", candidates, ioLimiter, func(path string) {
		if filter.Searchable(path) {
			mu.Lock()
			searchable = append(searchable, path)
			mu.Unlock()
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Infof("Total searchable files: %d", len(searchable))
	metrics.SearchableFiles = len(searchable)

	matcher := NewMatcher(cfg)
	store := NewStore()
	runPool(ctx, cfg, "Scanning files", searchable, ioLimiter, func(path string) {
		store.Record(path, matcher.ScanFile(path))
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	var totalMatches int
	for _, result := range store.Snapshot() {
		positions := make([]output.Position, len(result.Matches))
		for i, m := range result.Matches {
			positions[i] = output.Position{Line: m.Line, Start: m.Start, End: m.End}
		}
		if err := w.WriteResult(result.Path, positions); err != nil {
			return fmt.Errorf("writing report row for %s: %w", result.Path, err)
		}
		totalMatches += len(result.Matches)
	}
	metrics.MatchedFiles = store.Len()
	metrics.TotalMatches = totalMatches
	return nil
}

// runPool runs fn over every item with a bounded worker pool and waits for
// all workers to drain before returning. Progress updates are funneled
// through a channel so the bar is touched by a single goroutine.
func runPool(ctx context.Context, cfg *config.Config, description string, items []string, ioLimiter *rate.Limiter, fn func(string)) {
	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(progressVisible(cfg)),
		progressbar.OptionFullWidth(),
	)

	progressCh := make(chan int, maxInt(cfg.ConcurrencyLevel*4, 64))
	var progressWG sync.WaitGroup
	progressWG.Add(1)
	go func() {
		defer progressWG.Done()
		for delta := range progressCh {
			_ = bar.Add(delta)
		}
	}()

	tasks := make(chan string, cfg.ConcurrencyLevel)
	go func() {
		defer close(tasks)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case tasks <- item:
			}
		}
	}()

	var wg sync.WaitGroup
	for range cfg.ConcurrencyLevel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if ioLimiter != nil {
					if err := ioLimiter.Wait(ctx); err != nil {
						return
					}
				}
				fn(path)
				progressCh <- 1
			}
		}()
	}

	wg.Wait()
	close(progressCh)
	progressWG.Wait()
}

// adjustConcurrency resolves the worker pool size when it was not set
// explicitly: the detected logical CPU count scaled by the nice level.
func adjustConcurrency(cfg *config.Config) {
	if cfg.ConcurrencySet && cfg.ConcurrencyLevel > 0 {
		return
	}
	base := detectParallelism()
	switch cfg.NiceLevel {
	case "medium":
		base /= 2
	case "low":
		base = 1
	}
	if base < 1 {
		base = 1
	}
	cfg.ConcurrencyLevel = base
}

func detectParallelism() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func progressVisible(cfg *config.Config) bool {
	if cfg.NoProgress {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(os.Getenv("GREPARI_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
