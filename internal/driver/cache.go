package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// SnapshotCache stores computed fixture snapshots on disk, keyed by content
// digest. Thread-safe for concurrent access.
type SnapshotCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenSnapshotCache initializes a snapshot cache at the standard location.
func OpenSnapshotCache(app string) (*SnapshotCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenSnapshotCacheAt(filepath.Join(base, app))
}

// OpenSnapshotCacheAt initializes a snapshot cache rooted at dir.
func OpenSnapshotCacheAt(dir string) (*SnapshotCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotCache{dir: dir}, nil
}

func (c *SnapshotCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "fixtures", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a snapshot to the cache.
func (c *SnapshotCache) Put(key Digest, snap *Snapshot) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replacement.
	return os.Rename(f.Name(), p)
}

// Get reads a snapshot from the cache. Mismatched schema versions read as a
// miss so stale entries invalidate themselves.
func (c *SnapshotCache) Get(key Digest, out *Snapshot) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != snapshotSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *SnapshotCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "fixtures"))
}
