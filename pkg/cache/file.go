package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dataExt = ".bin"
	metaExt = ".meta"
)

// FileCache stores entries under a directory. Each key maps to a raw data
// file and a small JSON metadata file carrying its expiry, so multi-megabyte
// payloads are written without re-encoding.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

type entryMeta struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Entry describes one stored item, as reported by [FileCache.Entries].
type Entry struct {
	Key       string
	Size      int
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Get retrieves a value. Expired or unreadable entries are removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	base := c.path(key)

	meta, err := readMeta(base + metaExt)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		c.remove(base)
		return nil, false, nil
	}
	if !meta.ExpiresAt.IsZero() && time.Now().After(meta.ExpiresAt) {
		c.remove(base)
		return nil, false, nil
	}

	data, err := os.ReadFile(base + dataExt)
	if errors.Is(err, fs.ErrNotExist) {
		c.remove(base)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(data) != meta.Size {
		// Torn write from an interrupted Set.
		c.remove(base)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value. The data file is written before its metadata so a
// reader never sees metadata for missing data.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	base := c.path(key)
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return err
	}

	meta := entryMeta{Key: key, Size: len(data), StoredAt: time.Now().UTC()}
	if ttl > 0 {
		meta.ExpiresAt = meta.StoredAt.Add(ttl)
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	if err := writeAtomic(base+dataExt, data); err != nil {
		return err
	}
	return writeAtomic(base+metaExt, metaData)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	base := c.path(key)
	for _, p := range []string{base + metaExt, base + dataExt} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Entries lists the stored items, skipping any with unreadable metadata.
func (c *FileCache) Entries() ([]Entry, error) {
	var out []Entry
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, metaExt) {
			return nil
		}
		meta, err := readMeta(path)
		if err != nil {
			return nil
		}
		out = append(out, Entry{
			Key:       meta.Key,
			Size:      meta.Size,
			StoredAt:  meta.StoredAt,
			ExpiresAt: meta.ExpiresAt,
		})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

// Clear removes every entry and recreates the empty directory.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Close does nothing for file cache.
func (c *FileCache) Close() error { return nil }

// path converts a cache key to a file path without extension. The first two
// hash characters form a subdirectory.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:])
}

func (c *FileCache) remove(base string) {
	_ = os.Remove(base + metaExt)
	_ = os.Remove(base + dataExt)
}

func readMeta(path string) (entryMeta, error) {
	var meta entryMeta
	raw, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(raw, &meta)
	return meta, err
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Cache = (*FileCache)(nil)
