package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-depbom/label"
)

// Local reads descriptors from a Maven repository on the file system,
// such as ~/.m2/repository or a mirrored directory for offline use.
//
// Create with file:// URLs through NewSource:
//
//	src, _ := NewSource("file:///home/me/.m2/repository")
//
// Or with a native path:
//
//	src := NewLocal("/home/me/.m2/repository")
type Local struct {
	rootPath    string
	descriptors sync.Map // label.Coordinate -> *Descriptor
}

// NewLocal creates a source for the repository directory at rootPath.
func NewLocal(rootPath string) *Local {
	return &Local{rootPath: filepath.Clean(rootPath)}
}

// Root returns the repository directory.
func (l *Local) Root() string {
	return l.rootPath
}

// parseFileURL extracts the path from a file:// URL.
//
//	Unix:    file:///tmp/repo      -> /tmp/repo
//	Windows: file:///C:/Users/repo -> C:/Users/repo
func parseFileURL(url string) (string, error) {
	if !strings.HasPrefix(url, "file://") {
		return "", fmt.Errorf("not a file:// URL: %s", url)
	}
	path := strings.TrimPrefix(url, "file://")

	if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}
	if path == "" {
		return "", fmt.Errorf("empty path in file:// URL: %s", url)
	}
	return filepath.Clean(path), nil
}

func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// pathToFileURL converts a native path to a file:// URL using forward slashes.
func pathToFileURL(path string) string {
	urlPath := filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	return "file://" + urlPath
}

// BaseURL returns the file:// URL of the repository.
func (l *Local) BaseURL() string {
	return pathToFileURL(l.rootPath)
}

// Path returns the on-disk location of the descriptor for c.
func (l *Local) Path(c label.Coordinate) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(c.DescriptorPath()))
}

// Fetch reads and parses the descriptor for c.
func (l *Local) Fetch(ctx context.Context, c label.Coordinate) (*Descriptor, error) {
	if cached, ok := l.descriptors.Load(c); ok {
		return cached.(*Descriptor), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.Path(c)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &HTTPError{StatusCode: http.StatusNotFound, URL: pathToFileURL(path)}
		}
		return nil, fmt.Errorf("read local descriptor %s: %w", path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse local descriptor %s: %w", path, err)
	}

	l.descriptors.Store(c, d)
	return d, nil
}

var _ Source = (*Local)(nil)
