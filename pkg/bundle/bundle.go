// Package bundle locates the plotly.js library that offline documents and
// notebook bootstraps inline.
//
// A [Source] yields the library text. Three sources are provided:
//   - [File]: a plotly.min.js on disk
//   - [CDN]: a download from a URL, kept in a [cache.Cache] after the first fetch
//   - [Static]: a fixed string, used in tests and by embedders
//
// Every failure to produce the library is reported with code
// errors.ErrCodeBundleUnavailable.
package bundle

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/offlineplot/pkg/cache"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/httputil"
	"github.com/matzehuels/offlineplot/pkg/observability"
)

// DefaultCDNURL is the library location used when nothing else is configured.
const DefaultCDNURL = "https://cdn.plot.ly/plotly-latest.min.js"

// Source provides the plotly.js library source text.
type Source interface {
	Script(ctx context.Context) (string, error)
}

// =============================================================================
// Static
// =============================================================================

type staticSource string

// Static returns a Source that always yields s.
func Static(s string) Source { return staticSource(s) }

func (s staticSource) Script(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errors.New(errors.ErrCodeBundleUnavailable, "library source is empty")
	}
	return string(s), nil
}

// =============================================================================
// File
// =============================================================================

type fileSource struct {
	path string
}

// File returns a Source reading the library from path on every call.
func File(path string) Source { return fileSource{path: path} }

func (f fileSource) Script(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleUnavailable, err, "read library %s", f.path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.New(errors.ErrCodeBundleUnavailable, "library file %s is empty", f.path)
	}
	return string(data), nil
}

// =============================================================================
// CDN
// =============================================================================

// CDN downloads the library from URL and stores it in Cache. Later calls are
// served from the cache without network access.
type CDN struct {
	URL    string
	Cache  cache.Cache
	Client *httputil.Client
	TTL    time.Duration // 0 keeps the download forever
	Logger *log.Logger

	mu sync.Mutex
}

// NewCDN creates a CDN source. An empty url means [DefaultCDNURL] and a nil
// cache disables caching.
func NewCDN(url string, c cache.Cache) *CDN {
	if url == "" {
		url = DefaultCDNURL
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &CDN{
		URL:    url,
		Cache:  c,
		Client: httputil.NewClient(httputil.WithHeader("User-Agent", "offlineplot")),
		Logger: log.Default(),
	}
}

// Key returns the cache key the download is stored under.
func (c *CDN) Key() string { return cache.BundleKey(c.URL) }

// Script returns the cached library, downloading it on a miss.
func (c *CDN) Script(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, hit, err := c.Cache.Get(ctx, c.Key())
	if err != nil {
		c.logger().Warn("bundle cache read failed", "err", err)
	}
	if hit && len(data) > 0 {
		observability.Cache().OnCacheHit(ctx, "bundle")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "bundle")

	data, err = c.download(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fetch downloads the library even when a cached copy exists and returns its
// size in bytes.
func (c *CDN) Fetch(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.download(ctx)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Evict removes the cached download.
func (c *CDN) Evict(ctx context.Context) error {
	return c.Cache.Delete(ctx, c.Key())
}

func (c *CDN) download(ctx context.Context) ([]byte, error) {
	client := c.Client
	if client == nil {
		client = httputil.NewClient()
	}

	c.logger().Info("downloading plotly.js", "url", c.URL)
	data, err := client.Get(ctx, c.URL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBundleUnavailable, err, "download library from %s", c.URL)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New(errors.ErrCodeBundleUnavailable, "library at %s is empty", c.URL)
	}

	if err := c.Cache.Set(ctx, c.Key(), data, c.TTL); err != nil {
		c.logger().Warn("bundle cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "bundle", len(data))
	}
	return data, nil
}

func (c *CDN) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

var (
	_ Source = staticSource("")
	_ Source = fileSource{}
	_ Source = (*CDN)(nil)
)
