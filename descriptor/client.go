package descriptor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/albertocavalcante/go-depbom/label"
)

// DefaultRepository is Maven Central.
const DefaultRepository = "https://repo.maven.apache.org/maven2"

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
)

// maxDescriptorSize bounds the bytes read from a single response.
const maxDescriptorSize = 8 << 20

// Client fetches descriptors from a remote Maven repository.
type Client struct {
	baseURL string
	client  *http.Client
	cache   Cache

	// parsed descriptors keyed by label.Coordinate
	descriptors sync.Map
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the HTTP request timeout.
// Zero or negative values fall back to DefaultRequestTimeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithCache sets a raw-content cache consulted before any request.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// NewClient creates a client for the repository at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		cache: NoopCache{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the repository base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the descriptor URL for a coordinate.
func (c *Client) URL(coord label.Coordinate) string {
	return c.baseURL + "/" + coord.DescriptorPath()
}

// Fetch returns the descriptor for coord. Parsed descriptors are kept in memory;
// raw content goes through the configured Cache. A cached entry that no longer
// parses is fetched again and overwritten.
func (c *Client) Fetch(ctx context.Context, coord label.Coordinate) (*Descriptor, error) {
	if cached, ok := c.descriptors.Load(coord); ok {
		return cached.(*Descriptor), nil
	}

	data, hit, err := c.cache.Get(ctx, coord)
	if err != nil {
		slogcontext.Debug(ctx, "descriptor cache read failed", slog.String("coordinate", coord.String()), slog.Any("error", err))
	}
	if hit {
		d, err := Parse(data)
		if err == nil {
			c.descriptors.Store(coord, d)
			return d, nil
		}
		slogcontext.Debug(ctx, "discarding unparsable cached descriptor", slog.String("coordinate", coord.String()), slog.Any("error", err))
	}

	url := c.URL(coord)
	slogcontext.Debug(ctx, "fetching descriptor", slog.String("url", url))
	data, err = c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch descriptor for %s: %w", coord, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor for %s: %w", coord, err)
	}

	if err := c.cache.Put(ctx, coord, data); err != nil {
		slogcontext.Debug(ctx, "descriptor cache write failed", slog.String("coordinate", coord.String()), slog.Any("error", err))
	}

	c.descriptors.Store(coord, d)
	return d, nil
}

// ClearCache removes all parsed descriptors held in memory.
func (c *Client) ClearCache() {
	c.descriptors.Clear()
}

// fetch performs an HTTP GET and returns the response body.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDescriptorSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrDescriptorTooLarge, url, maxDescriptorSize)
	}
	return data, nil
}

var _ Source = (*Client)(nil)
