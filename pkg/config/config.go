// Package config loads and saves the offlineplot configuration file.
//
// The file lives at $XDG_CONFIG_HOME/offlineplot/config.toml (by default
// ~/.config/offlineplot/config.toml). Every key is optional:
//
//	plotly_domain = "https://plot.ly"
//	cdn_url       = "https://cdn.plot.ly/plotly-latest.min.js"
//	library_path  = ""      # local plotly.min.js, overrides cdn_url
//	cache_dir     = ""      # default $XDG_CACHE_HOME/offlineplot
//	cache_backend = "file"  # file, redis, or none
//	redis_addr    = "localhost:6379"
//	redis_db      = 0
//	auto_open     = true
package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/cache"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/render"
)

// AppName names the configuration and cache directories.
const AppName = "offlineplot"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Backends lists the accepted cache_backend values.
var Backends = []string{BackendFile, BackendRedis, BackendNone}

// Config is the on-disk configuration.
type Config struct {
	PlotlyDomain string `toml:"plotly_domain"`
	CDNURL       string `toml:"cdn_url"`
	LibraryPath  string `toml:"library_path"`
	CacheDir     string `toml:"cache_dir"`
	CacheBackend string `toml:"cache_backend"`
	RedisAddr    string `toml:"redis_addr"`
	RedisDB      int    `toml:"redis_db"`
	AutoOpen     bool   `toml:"auto_open"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		PlotlyDomain: render.DefaultPlatformURL,
		CDNURL:       bundle.DefaultCDNURL,
		CacheBackend: BackendFile,
		RedisAddr:    "localhost:6379",
		AutoOpen:     true,
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using XDG standard
// (~/.cache/offlineplot/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the configuration at path. Keys missing from the file keep
// their defaults, and a missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// Validate checks URLs and the cache backend.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.PlotlyDomain); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "plotly_domain")
	}
	if c.LibraryPath == "" {
		if err := errors.ValidateURL(c.CDNURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cdn_url")
		}
	}
	if !slices.Contains(Backends, c.CacheBackend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_backend %q must be one of: %s",
			c.CacheBackend, strings.Join(Backends, ", "))
	}
	if c.CacheBackend == BackendRedis && c.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis_addr is required for the redis cache backend")
	}
	return nil
}

// OpenCache opens the bundle cache the configuration selects. The caller
// closes it.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.CacheBackend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.RedisAddr, DB: c.RedisDB})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", c.RedisAddr)
		}
		// A shared redis may hold other applications' keys.
		return cache.WithPrefix(rc, AppName+":"), nil
	default:
		dir, err := c.CacheDirectory()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// CacheDirectory returns cache_dir, or the default cache directory when it
// is unset.
func (c Config) CacheDirectory() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	dir, err := DefaultCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
	}
	return dir, nil
}

// BundleSource returns the plotly.js source the configuration describes: the
// local library file when set, otherwise a CDN download cached in store.
func (c Config) BundleSource(store cache.Cache) bundle.Source {
	if c.LibraryPath != "" {
		return bundle.File(c.LibraryPath)
	}
	return bundle.NewCDN(c.CDNURL, store)
}
