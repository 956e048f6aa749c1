// Package notebook draws figures inside Jupyter notebook cells.
//
// A [Session] tracks whether plotly.js has been injected into the page. Init
// must run once per page before IPlot:
//
//	sess := notebook.NewSession(gonb.Display{}, bundle.NewCDN("", c), logger)
//	if err := sess.Init(ctx, true); err != nil {
//	    return err
//	}
//	_, err := sess.IPlot(ctx, fig, notebook.DefaultIPlotOptions())
//
// The notebook runtime is reached through the [Display] interface; the gonb
// subpackage implements it for the gonb Go kernel.
package notebook

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/convert"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
	"github.com/matzehuels/offlineplot/pkg/observability"
	"github.com/matzehuels/offlineplot/pkg/render"
)

// Display is a notebook output channel.
type Display interface {
	// Available reports whether a notebook runtime is attached.
	Available() bool

	// DisplayHTML appends rich HTML content to the current cell output.
	DisplayHTML(html string) error
}

// Display kinds reported to observability.NotebookHooks.
const (
	kindBootstrap = "bootstrap"
	kindPlot      = "plot"
	kindDownload  = "download"

	// renderTarget is the observability.RenderHooks target for IPlot.
	renderTarget = "notebook"
)

// Session holds the plotly.js initialization state of one notebook page.
// It is safe for concurrent use.
type Session struct {
	display Display
	library bundle.Source
	logger  *log.Logger

	// CDNURL is the library URL used by connected Init. Empty means the
	// latest plotly.js release.
	CDNURL string

	// PlatformURL is the plotly service domain. Empty means
	// render.DefaultPlatformURL.
	PlatformURL string

	// Validator checks figures when Validate is set.
	Validator figure.Validator

	// NewID overrides the fragment id generator. Used by tests.
	NewID func() string

	mu          sync.Mutex
	initialized bool
}

// NewSession creates a session writing to display. library supplies the
// source for local Init and may be nil when only connected mode is used.
// If logger is nil, log.Default() is used.
func NewSession(display Display, library bundle.Source, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{display: display, library: library, logger: logger}
}

// Initialized reports whether Init has succeeded on this session.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Init injects plotly.js into the notebook page. In connected mode the page
// loads the library from the CDN; otherwise the library source is inlined.
// Either way the script only acts when window.Plotly is not yet defined, so
// repeated calls are harmless.
func (s *Session) Init(ctx context.Context, connected bool) error {
	if err := s.requireDisplay(); err != nil {
		return err
	}

	var (
		script string
		err    error
	)
	if connected {
		script, err = render.ConnectedBootstrap(s.CDNURL)
	} else {
		var lib string
		if s.library == nil {
			return errors.New(errors.ErrCodeBundleUnavailable,
				"local mode needs a plotly.js source; pass one to NewSession or use connected mode")
		}
		if lib, err = s.library.Script(ctx); err != nil {
			return err
		}
		script, err = render.LocalBootstrap(lib)
	}
	if err != nil {
		return err
	}

	if err := s.show(ctx, kindBootstrap, script); err != nil {
		return err
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	s.logger.Debug("plotly.js injected", "connected", connected)
	return nil
}

// IPlotOptions controls IPlot.
type IPlotOptions struct {
	ShowLink bool
	LinkText string
	Validate bool

	// Image, when set, is downloaded right after the plot is drawn.
	Image *render.Image

	// Width and Height apply when the layout sets no size.
	Width  figure.Dimension
	Height figure.Dimension
}

// DefaultIPlotOptions returns a linked, validated plot spanning the cell
// width at plotly's default notebook height.
func DefaultIPlotOptions() IPlotOptions {
	return IPlotOptions{
		ShowLink: true,
		LinkText: render.DefaultLinkText,
		Validate: true,
		Width:    figure.Percent(100),
		Height:   figure.Pixels(525),
	}
}

// IPlot draws figureOrData in the current cell and returns the fragment.
// It fails with errors.ErrCodeNotebookUnavailable outside a notebook and
// errors.ErrCodeNotInitialized before Init.
func (s *Session) IPlot(ctx context.Context, figureOrData any, opts IPlotOptions) (frag *render.Fragment, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, renderTarget)
	defer func() {
		size := 0
		if frag != nil {
			size = len(frag.HTML)
		}
		observability.Render().OnRenderComplete(ctx, renderTarget, size, time.Since(start), err)
	}()

	if err := s.requireDisplay(); err != nil {
		return nil, err
	}
	if !s.Initialized() {
		return nil, errors.New(errors.ErrCodeNotInitialized,
			"plotly.js is not loaded in this notebook; call Session.Init first")
	}
	if opts.Image != nil {
		if err := opts.Image.Validate(); err != nil {
			return nil, err
		}
	}

	linkText := opts.LinkText
	if linkText == "" {
		linkText = render.DefaultLinkText
	}
	frag, err = render.Render(figureOrData, render.Options{
		ShowLink:      opts.ShowLink,
		LinkText:      linkText,
		Validate:      opts.Validate,
		Validator:     s.Validator,
		DefaultWidth:  opts.Width.Or(figure.Percent(100)),
		DefaultHeight: opts.Height.Or(figure.Pixels(525)),
		RequireJS:     true,
		PlatformURL:   s.PlatformURL,
		NewID:         s.NewID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.show(ctx, kindPlot, frag.HTML); err != nil {
		return nil, err
	}

	if opts.Image != nil {
		script, err := render.DownloadScript(frag.ID, *opts.Image)
		if err != nil {
			return nil, err
		}
		if err := s.show(ctx, kindDownload, script); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

// IPlotConverted converts foreign with conv and draws the result.
func (s *Session) IPlotConverted(ctx context.Context, conv convert.Converter, foreign any, copts convert.Options, opts IPlotOptions) (*render.Fragment, error) {
	if copts.Logger == nil {
		copts.Logger = s.logger
	}
	fig, err := convert.Do(conv, foreign, copts)
	if err != nil {
		return nil, err
	}
	return s.IPlot(ctx, fig, opts)
}

// DownloadImage asks the page to export the most recent plot drawn above
// the selected cell. It does not require Init.
func (s *Session) DownloadImage(ctx context.Context, img render.Image) error {
	if err := s.requireDisplay(); err != nil {
		return err
	}
	script, err := render.NotebookDownloadScript(img)
	if err != nil {
		return err
	}
	return s.show(ctx, kindDownload, script)
}

func (s *Session) requireDisplay() error {
	if s.display == nil || !s.display.Available() {
		return errors.New(errors.ErrCodeNotebookUnavailable,
			"no notebook runtime detected; run inside a gonb Jupyter kernel")
	}
	return nil
}

func (s *Session) show(ctx context.Context, kind, html string) error {
	err := s.display.DisplayHTML(html)
	observability.Notebook().OnDisplay(ctx, kind, len(html), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "display %s", kind)
	}
	return nil
}
