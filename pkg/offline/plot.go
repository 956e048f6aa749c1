package offline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/offlineplot/pkg/convert"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
	"github.com/matzehuels/offlineplot/pkg/observability"
	"github.com/matzehuels/offlineplot/pkg/render"
)

// Output types accepted by Plot.
const (
	OutputFile = "file"
	OutputDiv  = "div"
)

const (
	// DefaultFilename is the document written when no filename is given.
	DefaultFilename = "temp-plot.html"

	htmlSuffix = ".html"
)

// PlotOptions controls Plot, File, and Div.
type PlotOptions struct {
	ShowLink bool
	LinkText string
	Validate bool

	// OutputType is OutputFile or OutputDiv. Only Plot reads it.
	OutputType string

	// IncludeLibrary inlines the plotly.js source ahead of the plot.
	IncludeLibrary bool

	// Filename is the document path for file output.
	Filename string

	// AutoOpen opens the written document with the renderer's Opener.
	AutoOpen bool

	// Width and Height apply when the layout sets no size.
	Width  figure.Dimension
	Height figure.Dimension
}

// DefaultPlotOptions returns the options Plot uses when nothing is
// customized: a linked, validated, self-contained document named
// temp-plot.html that fills the browser window and opens automatically.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		ShowLink:       true,
		LinkText:       render.DefaultLinkText,
		Validate:       true,
		OutputType:     OutputFile,
		IncludeLibrary: true,
		Filename:       DefaultFilename,
		AutoOpen:       true,
		Width:          figure.Percent(100),
		Height:         figure.Percent(100),
	}
}

// Plot renders figureOrData according to opts.OutputType. For file output
// it returns the document's file:// URL; for div output the HTML fragment.
func (r *Renderer) Plot(ctx context.Context, figureOrData any, opts PlotOptions) (string, error) {
	switch opts.OutputType {
	case OutputFile:
		return r.File(ctx, figureOrData, opts)
	case OutputDiv:
		return r.Div(ctx, figureOrData, opts)
	default:
		return "", errors.New(errors.ErrCodeInvalidOutputType,
			"invalid output_type %q: must be %q or %q", opts.OutputType, OutputFile, OutputDiv)
	}
}

// PlotConverted converts foreign with conv and plots the result. Conversion
// options and plot options are forwarded unchanged.
func (r *Renderer) PlotConverted(ctx context.Context, conv convert.Converter, foreign any, copts convert.Options, opts PlotOptions) (string, error) {
	if copts.Logger == nil {
		copts.Logger = r.logger()
	}
	fig, err := convert.Do(conv, foreign, copts)
	if err != nil {
		return "", err
	}
	return r.Plot(ctx, fig, opts)
}

// File writes a standalone HTML document for figureOrData to opts.Filename
// and returns its file:// URL. A missing .html suffix is appended with a
// warning. Parent directories are created. A failure to open the document
// is logged, not returned, since the file itself was written.
func (r *Renderer) File(ctx context.Context, figureOrData any, opts PlotOptions) (url string, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, OutputFile)
	size := 0
	defer func() {
		observability.Render().OnRenderComplete(ctx, OutputFile, size, time.Since(start), err)
	}()

	name := opts.Filename
	if name == "" {
		name = DefaultFilename
	}
	if err := errors.ValidateFilename(name); err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, htmlSuffix) {
		r.logger().Warn("filename has no .html suffix, appending it", "filename", name)
		name += htmlSuffix
	}

	frag, err := r.fragment(figureOrData, opts)
	if err != nil {
		return "", err
	}
	var lib string
	if opts.IncludeLibrary {
		if lib, err = r.library(ctx); err != nil {
			return "", err
		}
	}
	doc := render.Document(frag, lib)
	size = len(doc)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", name)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create directory for %s", abs)
	}
	if err := os.WriteFile(abs, []byte(doc), 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", abs)
	}

	url = "file://" + filepath.ToSlash(abs)
	r.logger().Debug("wrote plot", "path", abs, "bytes", size, "id", frag.ID)

	if opts.AutoOpen && r.Opener != nil {
		if oerr := r.Opener.Open(url); oerr != nil {
			r.logger().Warn("could not open plot", "url", url, "err", oerr)
		}
	}
	return url, nil
}

// Div renders figureOrData as an HTML fragment for embedding in another
// page. With IncludeLibrary the fragment carries the plotly.js source.
func (r *Renderer) Div(ctx context.Context, figureOrData any, opts PlotOptions) (html string, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, OutputDiv)
	defer func() {
		observability.Render().OnRenderComplete(ctx, OutputDiv, len(html), time.Since(start), err)
	}()

	frag, err := r.fragment(figureOrData, opts)
	if err != nil {
		return "", err
	}
	if !opts.IncludeLibrary {
		return render.Embeddable(frag, ""), nil
	}
	lib, err := r.library(ctx)
	if err != nil {
		return "", err
	}
	return render.Embeddable(frag, lib), nil
}

// Document renders the full standalone document without writing it. The
// serve command uses it to answer HTTP requests.
func (r *Renderer) Document(ctx context.Context, figureOrData any, opts PlotOptions) (string, error) {
	frag, err := r.fragment(figureOrData, opts)
	if err != nil {
		return "", err
	}
	var lib string
	if opts.IncludeLibrary {
		if lib, err = r.library(ctx); err != nil {
			return "", err
		}
	}
	return render.Document(frag, lib), nil
}

func (r *Renderer) fragment(figureOrData any, opts PlotOptions) (*render.Fragment, error) {
	w, h := opts.Width, opts.Height
	if w.IsZero() {
		w = figure.Percent(100)
	}
	if h.IsZero() {
		h = figure.Percent(100)
	}
	linkText := opts.LinkText
	if linkText == "" {
		linkText = render.DefaultLinkText
	}
	return render.Render(figureOrData, render.Options{
		ShowLink:      opts.ShowLink,
		LinkText:      linkText,
		Validate:      opts.Validate,
		Validator:     r.Validator,
		DefaultWidth:  w,
		DefaultHeight: h,
		PlatformURL:   r.PlatformURL,
		NewID:         r.NewID,
	})
}
