package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/albertocavalcante/go-depbom/label"
)

// Cache stores raw descriptor bytes between lookups.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached content and true on a hit.
	Get(ctx context.Context, c label.Coordinate) ([]byte, bool, error)

	// Put stores content for c.
	Put(ctx context.Context, c label.Coordinate, content []byte) error
}

// Compile-time interface compliance checks
var _ Cache = NoopCache{}
var _ Cache = (*MemoryCache)(nil)
var _ Cache = (*DirCache)(nil)

// NoopCache discards all writes and always misses.
type NoopCache struct{}

// Get always returns a cache miss.
func (NoopCache) Get(context.Context, label.Coordinate) ([]byte, bool, error) {
	return nil, false, nil
}

// Put discards the content.
func (NoopCache) Put(context.Context, label.Coordinate, []byte) error {
	return nil
}

// MemoryCache is a thread-safe in-memory cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[label.Coordinate][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[label.Coordinate][]byte),
	}
}

// Get retrieves a cached descriptor.
func (c *MemoryCache) Get(_ context.Context, coord label.Coordinate) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.items[coord]
	if !ok {
		return nil, false, nil
	}
	result := make([]byte, len(content))
	copy(result, content)
	return result, true, nil
}

// Put stores a descriptor.
func (c *MemoryCache) Put(_ context.Context, coord label.Coordinate, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]byte, len(content))
	copy(stored, content)
	c.items[coord] = stored
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// DirCache stores descriptors on disk using the Maven repository layout, so the
// cache directory can later be used as a local repository.
type DirCache struct {
	root string
}

// cacheFilePermissions is the mode of cached descriptor files.
const cacheFilePermissions = 0o644

// NewDirCache creates a cache rooted at dir. The directory is created on first Put.
func NewDirCache(dir string) *DirCache {
	return &DirCache{root: filepath.Clean(dir)}
}

// Root returns the cache directory.
func (c *DirCache) Root() string {
	return c.root
}

func (c *DirCache) path(coord label.Coordinate) string {
	return filepath.Join(c.root, filepath.FromSlash(coord.DescriptorPath()))
}

// Get reads a cached descriptor from disk.
func (c *DirCache) Get(_ context.Context, coord label.Coordinate) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(coord))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached descriptor: %w", err)
	}
	return data, true, nil
}

// Put writes a descriptor to disk through a temporary file and rename.
func (c *DirCache) Put(_ context.Context, coord label.Coordinate, content []byte) error {
	target := c.path(coord)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".descriptor-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), cacheFilePermissions); err != nil {
		return fmt.Errorf("chmod cache file: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}
