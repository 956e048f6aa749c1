package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/offlineplot/pkg/buildinfo"
	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/cache"
	"github.com/matzehuels/offlineplot/pkg/config"
	"github.com/matzehuels/offlineplot/pkg/observability"
	"github.com/matzehuels/offlineplot/pkg/offline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the configuration file location.
	ConfigPath string

	// Opener opens written documents. Nil means the default browser.
	Opener offline.Opener
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Render plotly charts to local HTML without a charting service",
		Long: `offlineplot turns plotly chart descriptions (JSON with "data" and "layout")
into standalone HTML documents or embeddable fragments that draw with a local
copy of plotly.js.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.NewLogHooks(c.Logger).Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/offlineplot/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.divCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Library
// =============================================================================

func (c *CLI) configPath() (string, error) {
	if c.ConfigPath != "" {
		return c.ConfigPath, nil
	}
	return config.Path()
}

func (c *CLI) loadConfig() (config.Config, error) {
	path, err := c.configPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openLibrary returns the configured plotly.js source and a function that
// releases its cache.
func (c *CLI) openLibrary(ctx context.Context, cfg config.Config) (bundle.Source, func()) {
	if cfg.LibraryPath != "" {
		return cfg.BundleSource(nil), func() {}
	}
	store, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("bundle cache unavailable, downloading without caching", "err", err)
		store = cache.NewNullCache()
	}
	src := cfg.BundleSource(store)
	if cdn, ok := src.(*bundle.CDN); ok {
		cdn.Logger = c.Logger
	}
	return src, func() { store.Close() }
}

// newRenderer builds a renderer for cfg. lib may be nil when the library is
// not inlined.
func (c *CLI) newRenderer(cfg config.Config, lib bundle.Source) *offline.Renderer {
	r := offline.NewRenderer(lib, c.Logger)
	r.PlatformURL = cfg.PlotlyDomain
	if c.Opener != nil {
		r.Opener = c.Opener
	}
	return r
}
