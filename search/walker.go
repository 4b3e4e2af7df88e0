package search

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"grepari/config"
	"grepari/logger"
	"grepari/utils"

	"github.com/cespare/xxhash/v2"
)

// treeWalker performs an iterative pre-order traversal of a single root.
// Returning fs.SkipDir from fn for a directory prunes the whole subtree
// before any of its entries are read.
type treeWalker struct{}

func (treeWalker) Walk(ctx context.Context, root string, fn fs.WalkDirFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fn(root, nil, err)
	}

	type frame struct {
		path  string
		entry fs.DirEntry
	}
	stack := []frame{{path: root, entry: fs.FileInfoToDirEntry(info)}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(cur.path, cur.entry, nil); err != nil {
			if err == fs.SkipDir {
				continue
			}
			return err
		}
		if !cur.entry.IsDir() {
			continue
		}

		entries, err := os.ReadDir(cur.path)
		if err != nil {
			if ferr := fn(cur.path, cur.entry, err); ferr != nil && ferr != fs.SkipDir {
				return ferr
			}
			continue
		}
		for i := range entries {
			stack = append(stack, frame{
				path:  filepath.Join(cur.path, entries[i].Name()),
				entry: entries[i],
			})
		}
	}
	return nil
}

// CollectCandidates traverses every configured root and returns the regular
// files discovered, with excluded subtrees pruned before descent. A root
// that cannot be enumerated at all is fatal. When DedupeRoots is set, files
// reachable from overlapping roots are yielded once; the seen-set is keyed
// by xxhash of the cleaned absolute path to keep it compact.
func CollectCandidates(ctx context.Context, cfg *config.Config) ([]string, error) {
	var (
		candidates []string
		seen       map[uint64]struct{}
	)
	if cfg.DedupeRoots {
		seen = make(map[uint64]struct{})
	}

	w := treeWalker{}
	for _, root := range cfg.StartPaths {
		if _, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("cannot enumerate root %s: %w", root, err)
		}
		err := w.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warnf("Failed to access %s: %v", path, err)
				return nil
			}
			if d == nil {
				return nil
			}
			if d.IsDir() {
				if utils.UnderAny(path, cfg.ExcludeDirs) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if seen != nil {
				abs, aerr := filepath.Abs(path)
				if aerr != nil {
					abs = filepath.Clean(path)
				}
				key := xxhash.Sum64String(abs)
				if _, dup := seen[key]; dup {
					return nil
				}
				seen[key] = struct{}{}
			}
			candidates = append(candidates, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return candidates, nil
}
