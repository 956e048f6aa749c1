package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
	"github.com/matzehuels/offlineplot/pkg/offline"
	"github.com/matzehuels/offlineplot/pkg/render"
)

// stdinArg is the file argument that reads the figure from standard input.
const stdinArg = "-"

// plotFlags are the presentation flags shared by render, div, and serve.
type plotFlags struct {
	linkText   string
	noLink     bool
	noValidate bool
	width      string
	height     string
}

func (f *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.linkText, "link-text", render.DefaultLinkText, "label of the export link")
	cmd.Flags().BoolVar(&f.noLink, "no-link", false, "hide the export link")
	cmd.Flags().BoolVar(&f.noValidate, "no-validate", false, "skip structural validation of the figure")
	cmd.Flags().StringVar(&f.width, "width", "100%", "plot width when the layout sets none (e.g. 800, 800px, 100%)")
	cmd.Flags().StringVar(&f.height, "height", "100%", "plot height when the layout sets none")
}

// apply copies the flags onto opts.
func (f *plotFlags) apply(opts *offline.PlotOptions) error {
	w, err := figure.ParseDimension(f.width)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDimension, err, "--width")
	}
	h, err := figure.ParseDimension(f.height)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDimension, err, "--height")
	}
	opts.Width, opts.Height = w, h
	opts.ShowLink = !f.noLink
	opts.LinkText = f.linkText
	opts.Validate = !f.noValidate
	return nil
}

// renderCommand creates the render command, which writes a standalone document.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       plotFlags
		output      string
		noOpen      bool
		noIncludeJS bool
	)

	cmd := &cobra.Command{
		Use:   "render FIGURE.json",
		Short: "Write a figure to a standalone HTML document",
		Long: `Write a figure to a standalone HTML document and open it in the browser.

FIGURE.json holds either {"data": [...], "layout": {...}} or a bare list of
traces. Use "-" to read it from standard input. The document inlines plotly.js
unless --no-include-js is given.`,
		Example: `  offlineplot render chart.json
  offlineplot render chart.json -o out/report.html --no-open
  curl -s https://example.com/fig.json | offlineplot render - -o fig.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fig, err := readFigure(cmd, args[0])
			if err != nil {
				return err
			}

			opts := offline.DefaultPlotOptions()
			if err := flags.apply(&opts); err != nil {
				return err
			}
			opts.Filename = output
			if opts.Filename == "" {
				opts.Filename = defaultOutput(args[0])
			}
			opts.AutoOpen = cfg.AutoOpen && !noOpen
			opts.IncludeLibrary = !noIncludeJS

			r := c.newRenderer(cfg, nil)
			if opts.IncludeLibrary {
				lib, release := c.openLibrary(ctx, cfg)
				defer release()
				r.Library = lib
			}

			url, err := r.Plot(ctx, fig, opts)
			if err != nil {
				return err
			}
			prog.done("Rendered plot")
			printSuccess("Wrote plot")
			printFile(url)
			if !opts.AutoOpen {
				printNextStep("Open in a browser", url)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .html, or temp-plot.html)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "do not open the document in the browser")
	cmd.Flags().BoolVar(&noIncludeJS, "no-include-js", false, "do not inline plotly.js (the page must load it itself)")

	return cmd
}

// divCommand creates the div command, which prints an embeddable fragment.
func (c *CLI) divCommand() *cobra.Command {
	var (
		flags     plotFlags
		includeJS bool
	)

	cmd := &cobra.Command{
		Use:   "div FIGURE.json",
		Short: "Print an embeddable HTML fragment for a figure",
		Long: `Print the <div> and <script> that draw a figure, for embedding in another
page. The page must load plotly.js unless --include-js is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fig, err := readFigure(cmd, args[0])
			if err != nil {
				return err
			}

			opts := offline.DefaultPlotOptions()
			if err := flags.apply(&opts); err != nil {
				return err
			}
			opts.OutputType = offline.OutputDiv
			opts.IncludeLibrary = includeJS

			r := c.newRenderer(cfg, nil)
			if includeJS {
				lib, release := c.openLibrary(ctx, cfg)
				defer release()
				r.Library = lib
			}

			html, err := r.Plot(ctx, fig, opts)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html+"\n")
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&includeJS, "include-js", false, "inline plotly.js in the fragment")

	return cmd
}

// readFigure reads a figure from path, or from stdin when path is "-".
func readFigure(cmd *cobra.Command, path string) (*figure.Figure, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinArg {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read figure %s", path)
	}
	return figure.FromAny(data)
}

// defaultOutput derives the document name from the input file name.
func defaultOutput(input string) string {
	if input == stdinArg {
		return offline.DefaultFilename
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + ".html"
}
