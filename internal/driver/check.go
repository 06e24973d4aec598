// Package driver orchestrates batch processing of generic-signature fixtures:
// it materializes each fixture, computes its substitution record, verifies the
// environment invariants hold, and caches the flattened result.
package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"helix/internal/fixture"
)

// Result captures the outcome of checking one fixture file.
type Result struct {
	Path     string
	Snapshot *Snapshot
	Cached   bool
	Err      error
}

// listFixtureFiles returns the sorted list of *.toml files under dir.
func listFixtureFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".toml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every fixture under dir in parallel. cache may be nil to
// disable snapshot reuse. Per-fixture failures land in the matching Result;
// only directory-level problems fail the whole batch.
func CheckDir(ctx context.Context, dir string, cache *SnapshotCache) ([]Result, error) {
	files, err := listFixtureFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no fixture files under %s", dir)
	}

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = CheckFile(path, cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckFile materializes one fixture and computes its snapshot, consulting
// the cache first.
func CheckFile(path string, cache *SnapshotCache) Result {
	res := Result{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	key := Digest(sha256.Sum256(data))

	var cached Snapshot
	if hit, err := cache.Get(key, &cached); err == nil && hit {
		res.Snapshot = &cached
		res.Cached = true
		return res
	}

	w, err := fixture.ReadBytes(data)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	snap, err := snapshotWorld(w)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.Snapshot = snap

	if err := cache.Put(key, snap); err != nil {
		// A cold cache next run is the only cost; the check itself stands.
		fmt.Fprintf(os.Stderr, "warning: caching snapshot for %s: %v\n", path, err)
	}
	return res
}
