package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/cache"
	"github.com/matzehuels/offlineplot/pkg/config"
	"github.com/matzehuels/offlineplot/pkg/errors"
)

// bundleCommand creates the bundle command for managing the cached plotly.js.
func (c *CLI) bundleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Manage the local copy of plotly.js",
		Long: `Manage the plotly.js library that rendered documents inline.

The library comes from library_path when it is configured, otherwise it is
downloaded from cdn_url once and kept in the bundle cache.`,
	}

	cmd.AddCommand(c.bundleFetchCommand())
	cmd.AddCommand(c.bundleStatusCommand())
	cmd.AddCommand(c.bundlePathCommand())
	cmd.AddCommand(c.bundleClearCommand())

	return cmd
}

func (c *CLI) bundleFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download plotly.js into the cache, replacing any cached copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			lib, release := c.openLibrary(ctx, cfg)
			defer release()

			cdn, ok := lib.(*bundle.CDN)
			if !ok {
				printInfo("Using local library %s, nothing to fetch", cfg.LibraryPath)
				return nil
			}

			spin := newSpinnerWithContext(ctx, "Downloading "+cdn.URL)
			spin.Start()
			size, err := cdn.Fetch(ctx)
			if err != nil {
				spin.StopWithError("Download failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Cached plotly.js (%s)", formatBytes(size)))
			printDetail("%s", cdn.URL)
			return nil
		},
	}
}

func (c *CLI) bundleStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where plotly.js comes from and what is cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if cfg.LibraryPath != "" {
				printKeyValue("Source", "file")
				printKeyValue("Library", cfg.LibraryPath)
				return nil
			}
			printKeyValue("Source", "cdn")
			printKeyValue("URL", cfg.CDNURL)
			printKeyValue("Cache", cfg.CacheBackend)

			switch cfg.CacheBackend {
			case config.BackendRedis:
				printKeyValue("Redis", cfg.RedisAddr)
				return nil
			case config.BackendNone:
				return nil
			}

			fc, err := openFileCache(cfg)
			if err != nil {
				return err
			}
			printKeyValue("Directory", fc.Dir())
			entries, err := fc.Entries()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "list cache entries")
			}
			if len(entries) == 0 {
				printWarning("Nothing cached yet")
				printNextStep("Download now", appName+" bundle fetch")
				return nil
			}
			for _, e := range entries {
				printDetail("%s  %s  %s", e.Key, formatBytes(e.Size), e.StoredAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func (c *CLI) bundlePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the library file or cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.LibraryPath
			if path == "" {
				if path, err = cfg.CacheDirectory(); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func (c *CLI) bundleClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached plotly.js",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if cfg.CacheBackend == config.BackendFile {
				fc, err := openFileCache(cfg)
				if err != nil {
					return err
				}
				if err := fc.Clear(); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "clear %s", fc.Dir())
				}
				printSuccess("Cache cleared")
				printFile(fc.Dir())
				return nil
			}

			store, err := cfg.OpenCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := bundle.NewCDN(cfg.CDNURL, store).Evict(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "evict cached bundle")
			}
			printSuccess("Cache cleared")
			return nil
		},
	}
}

func openFileCache(cfg config.Config) (*cache.FileCache, error) {
	dir, err := cfg.CacheDirectory()
	if err != nil {
		return nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open cache %s", dir)
	}
	return fc, nil
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
