package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
	"github.com/matzehuels/offlineplot/pkg/offline"
)

const defaultServeAddr = "127.0.0.1:9199"

// figureLoader returns the figure to serve. It runs on every request so
// edits to the figure file show up on reload.
type figureLoader func() (*figure.Figure, error)

// serveCommand creates the serve command, a local preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags       plotFlags
		addr        string
		noIncludeJS bool
	)

	cmd := &cobra.Command{
		Use:   "serve FIGURE.json",
		Short: "Serve a live preview of a figure over HTTP",
		Long: `Serve a figure on a local HTTP address. The figure file is re-read on every
request, so reloading the page picks up edits.

Routes:
  /              standalone document
  /div           embeddable fragment
  /figure.json   normalized figure
  /healthz       liveness check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			load, err := newFigureLoader(cmd, args[0])
			if err != nil {
				return err
			}
			// Reject a broken figure before listening.
			if _, err := load(); err != nil {
				return err
			}

			opts := offline.DefaultPlotOptions()
			if err := flags.apply(&opts); err != nil {
				return err
			}
			opts.IncludeLibrary = !noIncludeJS

			r := c.newRenderer(cfg, nil)
			if opts.IncludeLibrary {
				lib, release := c.openLibrary(ctx, cfg)
				defer release()
				r.Library = lib
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "listen on %s", addr)
			}
			printSuccess("Serving %s", args[0])
			printFile("http://" + ln.Addr().String() + "/")
			return serve(ctx, ln, newPreviewRouter(load, r, opts, logger), logger)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().BoolVar(&noIncludeJS, "no-include-js", false, "load plotly.js from the page instead of inlining it")

	return cmd
}

// newFigureLoader reads stdin once, or returns a loader that re-reads path.
func newFigureLoader(cmd *cobra.Command, path string) (figureLoader, error) {
	if path != stdinArg {
		return func() (*figure.Figure, error) { return readFigure(cmd, path) }, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read figure from stdin")
	}
	return func() (*figure.Figure, error) { return figure.FromAny(bytes.Clone(data)) }, nil
}

// newPreviewRouter builds the preview server routes.
func newPreviewRouter(load figureLoader, r *offline.Renderer, opts offline.PlotOptions, logger *log.Logger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(60 * time.Second))

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		fig, err := load()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		doc, err := r.Document(req.Context(), fig, opts)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, doc)
	})

	mux.Get("/div", func(w http.ResponseWriter, req *http.Request) {
		fig, err := load()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		divOpts := opts
		divOpts.IncludeLibrary = false
		html, err := r.Div(req.Context(), fig, divOpts)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	})

	mux.Get("/figure.json", func(w http.ResponseWriter, _ *http.Request) {
		fig, err := load()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		data, err := figure.Marshal(map[string]any{"data": fig.Data, "layout": fig.Layout})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	return mux
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidFigure, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDimension:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeBundleUnavailable, errors.ErrCodeNetwork:
		status = http.StatusBadGateway
	}
	logger.Error("preview request failed", "status", status, "err", err)
	http.Error(w, errors.UserMessage(err), status)
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			logger.Debug("http",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}

// serve runs the preview server on ln until ctx is canceled.
func serve(ctx context.Context, ln net.Listener, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
