package descriptor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/albertocavalcante/go-depbom/label"
)

// Chain looks up descriptors in several repositories, in order.
//
// Any error from a repository, not only a 404, moves the lookup to the next
// one, so a repository with TLS or server problems does not hide descriptors
// available elsewhere. The first repository that serves a group is remembered
// and asked first for later coordinates of the same group.
type Chain struct {
	sources []Source

	groupSource   map[string]int
	groupSourceMu sync.RWMutex
}

// NewSource creates a source from a repository URL.
// file:// URLs give a Local source; http:// and https:// give a Client.
func NewSource(url string, timeout time.Duration, opts ...ClientOption) (Source, error) {
	switch {
	case strings.HasPrefix(url, "file://"):
		path, err := parseFileURL(url)
		if err != nil {
			return nil, err
		}
		return NewLocal(path), nil
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		if timeout != 0 {
			opts = append([]ClientOption{WithTimeout(timeout)}, opts...)
		}
		return NewClient(url, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported repository URL scheme: %s", url)
	}
}

// NewChain creates a chain over repository URLs.
//
// Invalid URLs are skipped; an error is returned only when none is usable.
func NewChain(urls []string, timeout time.Duration, opts ...ClientOption) (*Chain, error) {
	if len(urls) == 0 {
		return nil, errors.New("no repository URLs provided")
	}

	sources := make([]Source, 0, len(urls))
	for _, url := range urls {
		src, err := NewSource(url, timeout, opts...)
		if err != nil {
			continue
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid repositories could be created from %d URLs", len(urls))
	}
	return ChainOf(sources...), nil
}

// ChainOf creates a chain over existing sources. Nil sources are ignored.
func ChainOf(sources ...Source) *Chain {
	c := &Chain{groupSource: make(map[string]int)}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

// Len returns the number of sources in the chain.
func (c *Chain) Len() int {
	return len(c.sources)
}

// Fetch returns the descriptor from the first source that has it.
func (c *Chain) Fetch(ctx context.Context, coord label.Coordinate) (*Descriptor, error) {
	if len(c.sources) == 0 {
		return nil, ErrNoSource
	}

	c.groupSourceMu.RLock()
	preferred, known := c.groupSource[coord.Group]
	c.groupSourceMu.RUnlock()

	var errs []error
	allNotFound := true
	if known {
		src := c.sources[preferred]
		d, err := src.Fetch(ctx, coord)
		if err == nil {
			return d, nil
		}
		if !IsNotFound(err) {
			allNotFound = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.BaseURL(), err))
	}

	for i, src := range c.sources {
		if known && i == preferred {
			continue
		}
		d, err := src.Fetch(ctx, coord)
		if err == nil {
			c.groupSourceMu.Lock()
			if _, exists := c.groupSource[coord.Group]; !exists {
				c.groupSource[coord.Group] = i
			}
			c.groupSourceMu.Unlock()
			return d, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsNotFound(err) {
			allNotFound = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.BaseURL(), err))
	}

	joined := errors.Join(errs...)
	if allNotFound {
		return nil, fmt.Errorf("descriptor for %s not found in any repository: %w", coord, joined)
	}
	return nil, fmt.Errorf("descriptor for %s unavailable: %w", coord, joined)
}

// BaseURL returns the URL of the first source in the chain.
func (c *Chain) BaseURL() string {
	if len(c.sources) == 0 {
		return ""
	}
	return c.sources[0].BaseURL()
}

// SourceForGroup returns the URL of the source that served group,
// or "" if no descriptor of that group was found yet.
func (c *Chain) SourceForGroup(group string) string {
	c.groupSourceMu.RLock()
	defer c.groupSourceMu.RUnlock()
	if idx, ok := c.groupSource[group]; ok {
		return c.sources[idx].BaseURL()
	}
	return ""
}

var _ Source = (*Chain)(nil)
