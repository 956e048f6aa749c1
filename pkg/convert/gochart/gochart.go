// Package gochart converts github.com/wcharczuk/go-chart/v2 charts into
// plotly chart descriptions.
//
// Chart, BarChart, and PieChart values (or pointers to them) are accepted.
// A Chart may hold ContinuousSeries and TimeSeries; series on the secondary
// y axis are placed on plotly's yaxis2.
package gochart

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/offlineplot/pkg/convert"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

// Converter converts go-chart values.
type Converter struct{}

var _ convert.Converter = Converter{}

// Convert implements convert.Converter.
func (Converter) Convert(foreign any, opts convert.Options) (*figure.Figure, error) {
	switch c := foreign.(type) {
	case chart.Chart:
		return convertChart(&c, opts)
	case *chart.Chart:
		if c == nil {
			break
		}
		return convertChart(c, opts)
	case chart.BarChart:
		return convertBars(&c, opts), nil
	case *chart.BarChart:
		if c == nil {
			break
		}
		return convertBars(c, opts), nil
	case chart.PieChart:
		return convertPie(&c, opts), nil
	case *chart.PieChart:
		if c == nil {
			break
		}
		return convertPie(c, opts), nil
	}
	return nil, convert.Unsupported(foreign)
}

func convertChart(c *chart.Chart, opts convert.Options) (*figure.Figure, error) {
	logger := opts.Log()
	out := figure.New()
	secondary := false

	for i, s := range c.Series {
		var (
			t     figure.Trace
			style chart.Style
			axis  chart.YAxisType
		)
		switch s := s.(type) {
		case chart.ContinuousSeries:
			t = figure.Trace{"x": s.XValues, "y": s.YValues}
			style, axis = s.Style, s.YAxis
		case *chart.ContinuousSeries:
			t = figure.Trace{"x": s.XValues, "y": s.YValues}
			style, axis = s.Style, s.YAxis
		case chart.TimeSeries:
			t = figure.Trace{"x": s.XValues, "y": s.YValues}
			style, axis = s.Style, s.YAxis
		case *chart.TimeSeries:
			t = figure.Trace{"x": s.XValues, "y": s.YValues}
			style, axis = s.Style, s.YAxis
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "series %d: unsupported type %T", i, s)
		}
		if style.Hidden {
			continue
		}

		t["type"] = "scatter"
		t["mode"] = mode(style)
		if name := s.GetName(); name != "" {
			t["name"] = name
		}
		if axis == chart.YAxisSecondary {
			t["yaxis"] = "y2"
			secondary = true
		}
		if !opts.StripStyle {
			applyStyle(t, style)
		}
		if logger != nil {
			logger.Info("converted series", "index", i, "name", s.GetName(), "mode", t["mode"])
		}
		out.Data = append(out.Data, t)
	}

	l := map[string]any{}
	if c.Title != "" {
		l["title"] = map[string]any{"text": c.Title}
	}
	l["xaxis"] = axisLayout(c.XAxis.Name, c.XAxis.Range)
	l["yaxis"] = axisLayout(c.YAxis.Name, c.YAxis.Range)
	if secondary {
		y2 := axisLayout(c.YAxisSecondary.Name, c.YAxisSecondary.Range)
		y2["overlaying"] = "y"
		y2["side"] = "right"
		l["yaxis2"] = y2
	}
	if len(out.Data) > 1 {
		l["showlegend"] = true
	}
	size(l, c.Width, c.Height, opts)
	out.Layout = l
	return out, nil
}

func convertBars(c *chart.BarChart, opts convert.Options) *figure.Figure {
	labels := make([]string, len(c.Bars))
	values := make([]float64, len(c.Bars))
	colors := make([]string, len(c.Bars))
	colored := false
	for i, b := range c.Bars {
		labels[i] = b.Label
		values[i] = b.Value
		if col := rgba(b.Style.FillColor); col != "" {
			colors[i] = col
			colored = true
		}
	}

	t := figure.Trace{"type": "bar", "x": labels, "y": values}
	if colored && !opts.StripStyle {
		t["marker"] = map[string]any{"color": colors}
	}
	if logger := opts.Log(); logger != nil {
		logger.Info("converted bar chart", "bars", len(c.Bars))
	}

	l := map[string]any{}
	if c.Title != "" {
		l["title"] = map[string]any{"text": c.Title}
	}
	size(l, c.Width, c.Height, opts)
	return &figure.Figure{Data: []figure.Trace{t}, Layout: l}
}

func convertPie(c *chart.PieChart, opts convert.Options) *figure.Figure {
	labels := make([]string, len(c.Values))
	values := make([]float64, len(c.Values))
	for i, v := range c.Values {
		labels[i] = v.Label
		values[i] = v.Value
	}
	if logger := opts.Log(); logger != nil {
		logger.Info("converted pie chart", "slices", len(c.Values))
	}

	l := map[string]any{}
	if c.Title != "" {
		l["title"] = map[string]any{"text": c.Title}
	}
	size(l, c.Width, c.Height, opts)
	return &figure.Figure{
		Data:   []figure.Trace{{"type": "pie", "labels": labels, "values": values}},
		Layout: l,
	}
}

// mode follows go-chart's drawing rules: a zero or disabled stroke width with
// dots set draws points only. A negative width ([chart.Disabled]) turns that
// part off.
func mode(s chart.Style) string {
	dots := s.DotWidth > 0
	switch {
	case s.StrokeWidth <= 0 && dots:
		return "markers"
	case s.StrokeWidth < 0:
		return "none"
	case dots:
		return "lines+markers"
	default:
		return "lines"
	}
}

func applyStyle(t figure.Trace, s chart.Style) {
	line := map[string]any{}
	if c := rgba(s.StrokeColor); c != "" {
		line["color"] = c
	}
	if s.StrokeWidth > 0 {
		line["width"] = s.StrokeWidth
	}
	if len(s.StrokeDashArray) > 0 {
		line["dash"] = "dash"
	}
	if len(line) > 0 {
		t["line"] = line
	}

	if s.DotWidth > 0 {
		marker := map[string]any{"size": 2 * s.DotWidth}
		if c := rgba(s.DotColor); c != "" {
			marker["color"] = c
		}
		t["marker"] = marker
	}
	if c := rgba(s.FillColor); c != "" {
		t["fill"] = "tozeroy"
		t["fillcolor"] = c
	}
}

func axisLayout(name string, r chart.Range) map[string]any {
	out := map[string]any{}
	if name != "" {
		out["title"] = map[string]any{"text": name}
	}
	if r != nil && !r.IsZero() {
		out["range"] = []float64{r.GetMin(), r.GetMax()}
	}
	return out
}

// size records the chart size. go-chart substitutes its defaults for zero
// dimensions, so the same defaults are used here.
func size(l map[string]any, w, h int, opts convert.Options) {
	if opts.Resize {
		return
	}
	if w == 0 {
		w = chart.DefaultChartWidth
	}
	if h == 0 {
		h = chart.DefaultChartHeight
	}
	l["width"] = w
	l["height"] = h
}

func rgba(c drawing.Color) string {
	if c.IsZero() {
		return ""
	}
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}
