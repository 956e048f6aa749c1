package figure

import (
	"reflect"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

// Validator checks a figure before it is rendered. Implementations return an
// error with code [errors.ErrCodeInvalidFigure] for structural problems.
type Validator interface {
	Validate(f *Figure) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(f *Figure) error

// Validate calls fn(f).
func (fn ValidatorFunc) Validate(f *Figure) error { return fn(f) }

// DefaultValidator performs the structural checks plotly.js relies on.
// It does not consult the full attribute schema.
var DefaultValidator Validator = StructuralValidator{}

// TraceTypes is the set of trace types StructuralValidator accepts.
var TraceTypes = map[string]bool{
	"bar": true, "barpolar": true, "box": true, "candlestick": true,
	"carpet": true, "choropleth": true, "choroplethmapbox": true,
	"cone": true, "contour": true, "contourcarpet": true,
	"densitymapbox": true, "funnel": true, "funnelarea": true,
	"heatmap": true, "heatmapgl": true, "histogram": true,
	"histogram2d": true, "histogram2dcontour": true, "icicle": true,
	"image": true, "indicator": true, "isosurface": true, "mesh3d": true,
	"ohlc": true, "parcats": true, "parcoords": true, "pie": true,
	"pointcloud": true, "sankey": true, "scatter": true, "scatter3d": true,
	"scattercarpet": true, "scattergeo": true, "scattergl": true,
	"scattermapbox": true, "scatterpolar": true, "scatterpolargl": true,
	"scattersmith": true, "scatterternary": true, "splom": true,
	"streamtube": true, "sunburst": true, "surface": true, "table": true,
	"treemap": true, "violin": true, "volume": true, "waterfall": true,
}

// StructuralValidator rejects traces that are nil, carry a non-string or
// unknown "type", or use a non-list value for the common data arrays.
type StructuralValidator struct{}

// arrayKeys are trace attributes plotly.js requires to be arrays.
var arrayKeys = []string{"x", "y", "z", "labels", "values", "text"}

// Validate implements Validator.
func (StructuralValidator) Validate(f *Figure) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidFigure, "figure is nil")
	}
	for i, t := range f.Data {
		if t == nil {
			return errors.New(errors.ErrCodeInvalidFigure, "data[%d] is nil", i)
		}
		if raw, ok := t["type"]; ok {
			name, ok := raw.(string)
			if !ok {
				return errors.New(errors.ErrCodeInvalidFigure, "data[%d].type must be a string, got %T", i, raw)
			}
			if !TraceTypes[name] {
				return errors.New(errors.ErrCodeInvalidFigure, "data[%d].type %q is not a known trace type", i, name)
			}
		}
		for _, key := range arrayKeys {
			v, ok := t[key]
			if !ok || v == nil {
				continue
			}
			if key == "text" {
				if _, isString := v.(string); isString {
					continue
				}
			}
			if !isList(v) {
				return errors.New(errors.ErrCodeInvalidFigure, "data[%d].%s must be a list, got %T", i, key, v)
			}
		}
	}
	for _, key := range []string{"width", "height"} {
		if v, ok := f.Layout[key]; ok && v != nil {
			if _, err := ParseDimension(v); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFigure, err, "layout.%s", key)
			}
		}
	}
	return nil
}

func isList(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}
