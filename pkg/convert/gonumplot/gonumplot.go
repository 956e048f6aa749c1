// Package gonumplot converts gonum.org/v1/plot figures into plotly chart
// descriptions.
//
// gonum's *plot.Plot does not expose the plotters added to it, so figures
// are built through [Figure], which records each plotter and its legend
// name as it is added:
//
//	fig := gonumplot.New()
//	fig.Plot.Title.Text = "Latency"
//	line, _ := plotter.NewLine(pts)
//	fig.Add("p99", line)
//	html, err := renderer.PlotConverted(ctx, gonumplot.Converter{}, fig, convert.Options{}, opts)
//
// Supported plotters are *plotter.Line, *plotter.Scatter, *plotter.BarChart,
// *plotter.Histogram, and *plotter.Grid.
package gonumplot

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/offlineplot/pkg/convert"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

// Figure is a gonum plot together with the plotters added to it.
type Figure struct {
	Plot *plot.Plot

	// Width and Height are the intended output size.
	Width, Height vg.Length

	entries []entry
	xRange  bool
	yRange  bool
}

type entry struct {
	name    string
	plotter plot.Plotter
}

// New creates a Figure around a fresh plot, sized 6x4 inches.
func New() *Figure {
	return Wrap(plot.New())
}

// Wrap creates a Figure around an existing plot. Plotters added to p before
// wrapping are not visible to the converter.
func Wrap(p *plot.Plot) *Figure {
	return &Figure{Plot: p, Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Add adds ps to the plot. When name is non-empty each plotter that can draw
// a legend thumbnail is also added to the legend under that name.
func (f *Figure) Add(name string, ps ...plot.Plotter) {
	for _, p := range ps {
		f.Plot.Add(p)
		if th, ok := p.(plot.Thumbnailer); ok && name != "" {
			f.Plot.Legend.Add(name, th)
		}
		f.entries = append(f.entries, entry{name: name, plotter: p})
	}
}

// SetXRange fixes the x axis range. Without it plotly autoscales.
func (f *Figure) SetXRange(min, max float64) {
	f.Plot.X.Min, f.Plot.X.Max = min, max
	f.xRange = true
}

// SetYRange fixes the y axis range. Without it plotly autoscales.
func (f *Figure) SetYRange(min, max float64) {
	f.Plot.Y.Min, f.Plot.Y.Max = min, max
	f.yRange = true
}

// Converter converts *Figure values.
type Converter struct{}

var _ convert.Converter = Converter{}

// Convert implements convert.Converter.
func (Converter) Convert(foreign any, opts convert.Options) (*figure.Figure, error) {
	f, ok := foreign.(*Figure)
	if !ok || f == nil || f.Plot == nil {
		return nil, convert.Unsupported(foreign)
	}
	logger := opts.Log()

	xTime := timeAxis(f.Plot.X)
	out := figure.New()
	showGrid := false

	for i, e := range f.entries {
		var traces []figure.Trace
		switch p := e.plotter.(type) {
		case *plotter.Line:
			traces = []figure.Trace{lineTrace(p, opts)}
		case *plotter.Scatter:
			traces = []figure.Trace{scatterTrace(p, opts)}
		case *plotter.BarChart:
			traces = []figure.Trace{barTrace(p, opts)}
		case *plotter.Histogram:
			traces = []figure.Trace{histogramTrace(p, opts)}
		case *plotter.Grid:
			showGrid = true
			continue
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "plotter %d: unsupported type %T", i, e.plotter)
		}
		for _, t := range traces {
			if e.name != "" {
				t["name"] = e.name
			}
			if xTime != nil {
				t["x"] = toTimes(t["x"], xTime)
			}
			if logger != nil {
				logger.Info("converted plotter", "index", i, "type", t["type"], "name", e.name)
			}
			out.Data = append(out.Data, t)
		}
	}

	out.Layout = layout(f, opts, showGrid, xTime != nil)
	return out, nil
}

func layout(f *Figure, opts convert.Options, showGrid, xTime bool) map[string]any {
	p := f.Plot
	l := map[string]any{}

	if p.Title.Text != "" {
		l["title"] = map[string]any{"text": p.Title.Text}
	}

	xaxis := axis(p.X, f.xRange)
	yaxis := axis(p.Y, f.yRange)
	if xTime {
		xaxis["type"] = "date"
		delete(xaxis, "range")
	}
	if showGrid {
		xaxis["showgrid"] = true
		yaxis["showgrid"] = true
	}
	l["xaxis"] = xaxis
	l["yaxis"] = yaxis

	if namedEntries(f) > 0 {
		l["showlegend"] = true
	}
	if hasHistogram(f) {
		l["bargap"] = 0
	}

	if !opts.Resize && f.Width > 0 && f.Height > 0 {
		l["width"] = pixels(f.Width)
		l["height"] = pixels(f.Height)
	}
	return l
}

func axis(a plot.Axis, fixedRange bool) map[string]any {
	out := map[string]any{}
	if a.Label.Text != "" {
		out["title"] = map[string]any{"text": a.Label.Text}
	}
	_, isLog := a.Scale.(plot.LogScale)
	if isLog {
		out["type"] = "log"
	}
	if fixedRange {
		if isLog {
			out["range"] = []float64{math.Log10(a.Min), math.Log10(a.Max)}
		} else {
			out["range"] = []float64{a.Min, a.Max}
		}
	}
	return out
}

func lineTrace(p *plotter.Line, opts convert.Options) figure.Trace {
	xs, ys := xys(p.XYs)
	t := figure.Trace{"type": "scatter", "mode": "lines", "x": xs, "y": ys}

	line := map[string]any{}
	if shape := stepShape(p.StepStyle); shape != "" {
		line["shape"] = shape
	}
	if !opts.StripStyle {
		if c := rgba(p.LineStyle.Color); c != "" {
			line["color"] = c
		}
		if p.LineStyle.Width > 0 {
			line["width"] = pixels(p.LineStyle.Width)
		}
		if len(p.LineStyle.Dashes) > 0 {
			line["dash"] = "dash"
		}
		if c := rgba(p.FillColor); c != "" {
			t["fill"] = "tozeroy"
			t["fillcolor"] = c
		}
	}
	if len(line) > 0 {
		t["line"] = line
	}
	return t
}

func scatterTrace(p *plotter.Scatter, opts convert.Options) figure.Trace {
	xs, ys := xys(p.XYs)
	t := figure.Trace{"type": "scatter", "mode": "markers", "x": xs, "y": ys}
	if !opts.StripStyle {
		marker := map[string]any{}
		if c := rgba(p.GlyphStyle.Color); c != "" {
			marker["color"] = c
		}
		if p.GlyphStyle.Radius > 0 {
			marker["size"] = 2 * pixels(p.GlyphStyle.Radius)
		}
		if len(marker) > 0 {
			t["marker"] = marker
		}
	}
	return t
}

func barTrace(p *plotter.BarChart, opts convert.Options) figure.Trace {
	pos := make([]float64, len(p.Values))
	vals := make([]float64, len(p.Values))
	for i, v := range p.Values {
		pos[i] = p.XMin + float64(i)
		vals[i] = v
	}

	t := figure.Trace{"type": "bar"}
	if p.Horizontal {
		t["orientation"] = "h"
		t["x"], t["y"] = vals, pos
	} else {
		t["x"], t["y"] = pos, vals
	}
	if !opts.StripStyle {
		marker := map[string]any{}
		if c := rgba(p.Color); c != "" {
			marker["color"] = c
		}
		if c := rgba(p.LineStyle.Color); c != "" && p.LineStyle.Width > 0 {
			marker["line"] = map[string]any{"color": c, "width": pixels(p.LineStyle.Width)}
		}
		if len(marker) > 0 {
			t["marker"] = marker
		}
	}
	return t
}

func histogramTrace(p *plotter.Histogram, opts convert.Options) figure.Trace {
	centers := make([]float64, len(p.Bins))
	weights := make([]float64, len(p.Bins))
	widths := make([]float64, len(p.Bins))
	for i, b := range p.Bins {
		centers[i] = (b.Min + b.Max) / 2
		weights[i] = b.Weight
		widths[i] = b.Max - b.Min
	}

	t := figure.Trace{"type": "bar", "x": centers, "y": weights, "width": widths}
	if !opts.StripStyle {
		if c := rgba(p.FillColor); c != "" {
			t["marker"] = map[string]any{"color": c}
		}
	}
	return t
}

func xys(pts plotter.XYs) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return xs, ys
}

func stepShape(k plotter.StepKind) string {
	switch k {
	case plotter.PreStep:
		return "vh"
	case plotter.MidStep:
		return "hvh"
	case plotter.PostStep:
		return "hv"
	default:
		return ""
	}
}

// timeAxis returns the float-to-time mapping when the axis uses time ticks.
func timeAxis(a plot.Axis) func(float64) time.Time {
	tt, ok := a.Tick.Marker.(plot.TimeTicks)
	if !ok {
		return nil
	}
	if tt.Time != nil {
		return tt.Time
	}
	return plot.UTCUnixTime
}

func toTimes(v any, conv func(float64) time.Time) any {
	xs, ok := v.([]float64)
	if !ok {
		return v
	}
	out := make([]time.Time, len(xs))
	for i, x := range xs {
		out[i] = conv(x)
	}
	return out
}

func rgba(c color.Color) string {
	if c == nil {
		return ""
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("rgb(%d,%d,%d)", n.R, n.G, n.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", n.R, n.G, n.B, float64(n.A)/255)
}

// pixels converts vg lengths (1/72 inch) to CSS pixels (1/96 inch).
func pixels(l vg.Length) float64 {
	return float64(l) * 96 / 72
}

func namedEntries(f *Figure) int {
	n := 0
	for _, e := range f.entries {
		if e.name != "" {
			n++
		}
	}
	return n
}

func hasHistogram(f *Figure) bool {
	for _, e := range f.entries {
		if _, ok := e.plotter.(*plotter.Histogram); ok {
			return true
		}
	}
	return false
}
