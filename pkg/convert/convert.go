// Package convert defines how figures from other Go plotting libraries are
// turned into plotly chart descriptions.
//
// Implementations live in subpackages:
//   - gonumplot: gonum.org/v1/plot figures
//   - gochart: github.com/wcharczuk/go-chart/v2 charts
//
// The rendering entry points take a [Converter] as an explicit argument. A
// nil converter is reported as errors.ErrCodeConverterUnavailable rather
// than probed for at runtime.
package convert

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

// Options tune a conversion.
type Options struct {
	// Resize drops the source figure's size so plotly picks one.
	Resize bool

	// StripStyle drops colors, line widths, and marker styling so plotly's
	// defaults apply.
	StripStyle bool

	// Verbose logs each converted element at info level.
	Verbose bool

	// Logger receives Verbose output. Nil means log.Default().
	Logger *log.Logger
}

// Log returns the logger for verbose output, or nil when Verbose is off.
func (o Options) Log() *log.Logger {
	if !o.Verbose {
		return nil
	}
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// Converter converts a foreign figure into a chart description. Converters
// return errors.ErrCodeUnsupported for values they do not handle.
type Converter interface {
	Convert(foreign any, opts Options) (*figure.Figure, error)
}

// Func adapts a function to the Converter interface.
type Func func(foreign any, opts Options) (*figure.Figure, error)

// Convert calls fn.
func (fn Func) Convert(foreign any, opts Options) (*figure.Figure, error) {
	return fn(foreign, opts)
}

// Do runs conv, reporting a nil converter as unavailable.
func Do(conv Converter, foreign any, opts Options) (*figure.Figure, error) {
	if conv == nil {
		return nil, errors.New(errors.ErrCodeConverterUnavailable,
			"no figure converter configured for %T", foreign)
	}
	if foreign == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "figure to convert is nil")
	}
	fig, err := conv.Convert(foreign, opts)
	if err != nil {
		return nil, err
	}
	if fig == nil {
		return nil, errors.New(errors.ErrCodeInternal, "converter returned no figure for %T", foreign)
	}
	return fig, nil
}

// Chain returns a Converter that tries each converter in order and uses the
// first one that does not report errors.ErrCodeUnsupported.
func Chain(convs ...Converter) Converter {
	return Func(func(foreign any, opts Options) (*figure.Figure, error) {
		for _, c := range convs {
			if c == nil {
				continue
			}
			fig, err := c.Convert(foreign, opts)
			if errors.Is(err, errors.ErrCodeUnsupported) {
				continue
			}
			return fig, err
		}
		return nil, Unsupported(foreign)
	})
}

// Unsupported returns the error converters use for values they cannot handle.
func Unsupported(foreign any) error {
	return errors.New(errors.ErrCodeUnsupported, "cannot convert %T", foreign)
}
