package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/version"
)

// cacheSchemaVersion is bumped whenever CachePayload changes.
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 sum.
type Digest [32]byte

// DiskCache stores analysis outputs keyed by configuration; entries are
// validated against the hashes of every input file.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is everything a run produces before it touches the output files.
type CachePayload struct {
	Schema uint16
	Tool   string

	FilePaths  []string
	FileHashes []Digest

	Report   string
	Rollups  map[string]string
	DocModel []byte
	Logged   []diag.LoggedMessage
}

// OpenDiskCache opens the cache in dir, or in $XDG_CACHE_HOME/apix when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, version.ToolName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "runs", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload.
func (c *DiskCache) Put(key Digest, payload *CachePayload) (err error) {
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
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one with another schema is a miss.
func (c *DiskCache) Get(key Digest, out *CachePayload) (bool, error) {
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
	defer f.Close() //nolint:errcheck
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion || out.Tool != version.Version {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// configKey hashes everything in the configuration that affects outputs.
func configKey(cfg *config.Config) (Digest, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(struct {
		Schema  uint16
		Tool    string
		Config  *config.Config
		Name    string
		Version string
	}{cacheSchemaVersion, version.Version, cfg, cfg.PackageName, cfg.PackageVersion}); err != nil {
		return Digest{}, fmt.Errorf("cache key: %w", err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// hashFiles reads and hashes paths from disk; ok is false when one cannot be read.
func hashFiles(paths []string) ([]Digest, bool) {
	out := make([]Digest, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, false
		}
		out[i] = sha256.Sum256(data)
	}
	return out, true
}

// fresh reports whether every input recorded in the payload is unchanged.
func (p *CachePayload) fresh() bool {
	if len(p.FilePaths) == 0 || len(p.FilePaths) != len(p.FileHashes) {
		return false
	}
	hashes, ok := hashFiles(p.FilePaths)
	if !ok {
		return false
	}
	for i := range hashes {
		if hashes[i] != p.FileHashes[i] {
			return false
		}
	}
	return true
}

func sortedUnique(paths []string) []string {
	slices.Sort(paths)
	return slices.Compact(paths)
}
