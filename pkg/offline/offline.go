// Package offline renders figures into standalone HTML documents and
// embeddable fragments without contacting a charting service.
//
// # Usage
//
//	r := offline.NewRenderer(bundle.NewCDN("", fileCache), logger)
//	opts := offline.DefaultPlotOptions()
//	opts.Filename = "latency"
//	url, err := r.Plot(ctx, []figure.Trace{{"x": xs, "y": ys}}, opts)
//
// Plot writes latency.html (warning once about the missing suffix), opens it
// in the default browser, and returns its file:// URL. With OutputType "div"
// it returns the HTML fragment instead.
package offline

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

// Opener opens a URL for the user, normally in a web browser.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(url string) error

// Open calls fn.
func (fn OpenerFunc) Open(url string) error { return fn(url) }

// BrowserOpener opens URLs with the platform's default browser.
var BrowserOpener Opener = OpenerFunc(browser.OpenURL)

// Renderer renders figures for file and div delivery.
//
// A Renderer holds no per-call state; one value may serve concurrent calls
// as long as its fields are not modified.
type Renderer struct {
	// Library supplies the plotly.js source inlined when IncludeLibrary is set.
	Library bundle.Source

	// Opener opens written files when AutoOpen is set.
	Opener Opener

	// PlatformURL is the plotly service domain used for BASE_URL and the
	// export link text. Empty means render.DefaultPlatformURL.
	PlatformURL string

	// Validator checks figures when Validate is set. Nil means
	// figure.DefaultValidator.
	Validator figure.Validator

	// NewID overrides the fragment id generator. Used by tests.
	NewID func() string

	Logger *log.Logger
}

// NewRenderer creates a renderer that inlines library when asked to.
// If logger is nil, log.Default() is used.
func NewRenderer(library bundle.Source, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{
		Library: library,
		Opener:  BrowserOpener,
		Logger:  logger,
	}
}

func (r *Renderer) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func (r *Renderer) library(ctx context.Context) (string, error) {
	if r.Library == nil {
		return "", errors.New(errors.ErrCodeBundleUnavailable,
			"no plotly.js source configured; set Renderer.Library or disable IncludeLibrary")
	}
	return r.Library.Script(ctx)
}
