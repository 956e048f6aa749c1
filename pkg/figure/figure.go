package figure

import (
	"encoding/json"
	"maps"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

// Trace is a single series entry. Keys are plotly.js trace attributes.
type Trace = map[string]any

// Figure is a chart description: a list of traces and a layout mapping.
type Figure struct {
	Data   []Trace        `json:"data"`
	Layout map[string]any `json:"layout"`
}

// New creates a figure from traces with an empty layout.
func New(traces ...Trace) *Figure {
	return &Figure{Data: traces, Layout: map[string]any{}}
}

// Clone returns a shallow copy of f. The trace and layout maps are copied one
// level deep so callers can add or remove top-level keys safely.
func (f *Figure) Clone() *Figure {
	out := &Figure{
		Data:   make([]Trace, len(f.Data)),
		Layout: maps.Clone(f.Layout),
	}
	for i, t := range f.Data {
		out.Data[i] = maps.Clone(t)
	}
	if out.Layout == nil {
		out.Layout = map[string]any{}
	}
	return out
}

// Size resolves the figure's width and height. Values from layout.width and
// layout.height take precedence over the defaults.
func (f *Figure) Size(defaultWidth, defaultHeight Dimension) (width, height Dimension, err error) {
	width, height = defaultWidth, defaultHeight
	if v, ok := f.Layout["width"]; ok && v != nil {
		if width, err = ParseDimension(v); err != nil {
			return Dimension{}, Dimension{}, err
		}
	}
	if v, ok := f.Layout["height"]; ok && v != nil {
		if height, err = ParseDimension(v); err != nil {
			return Dimension{}, Dimension{}, err
		}
	}
	return width, height, nil
}

// FromAny coerces any supported figure-or-data shape into a Figure without
// validating trace contents. The returned figure never shares its top-level
// slice or layout map with the input.
func FromAny(v any) (*Figure, error) {
	switch t := v.(type) {
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidFigure, "figure is nil")
	case Figure:
		return t.Clone(), nil
	case *Figure:
		if t == nil {
			return nil, errors.New(errors.ErrCodeInvalidFigure, "figure is nil")
		}
		return t.Clone(), nil
	case []Trace:
		return (&Figure{Data: t}).Clone(), nil
	case []any:
		data, err := tracesFromList(t)
		if err != nil {
			return nil, err
		}
		return &Figure{Data: data, Layout: map[string]any{}}, nil
	case map[string]any:
		return fromMapping(t)
	case json.RawMessage:
		return fromJSON(t)
	case []byte:
		return fromJSON(t)
	case string:
		return fromJSON([]byte(t))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFigure,
			"unsupported figure type %T (want Figure, data list, or figure mapping)", v)
	}
}

// Normalize coerces v with FromAny and, when validate is set, checks it with
// validator. A nil validator means [DefaultValidator].
func Normalize(v any, validate bool, validator Validator) (*Figure, error) {
	f, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	if !validate {
		return f, nil
	}
	if validator == nil {
		validator = DefaultValidator
	}
	if err := validator.Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

func fromJSON(raw []byte) (*Figure, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFigure, err, "parse figure JSON")
	}
	switch v.(type) {
	case []any, map[string]any:
		return FromAny(v)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFigure, "figure JSON must be an array or an object")
	}
}

func fromMapping(m map[string]any) (*Figure, error) {
	f := &Figure{Layout: map[string]any{}}

	switch d := m["data"].(type) {
	case nil:
	case []Trace:
		f.Data = make([]Trace, len(d))
		for i, t := range d {
			f.Data[i] = maps.Clone(t)
		}
	case []any:
		data, err := tracesFromList(d)
		if err != nil {
			return nil, err
		}
		f.Data = data
	default:
		return nil, errors.New(errors.ErrCodeInvalidFigure, "figure data must be a list, got %T", d)
	}

	switch l := m["layout"].(type) {
	case nil:
	case map[string]any:
		f.Layout = maps.Clone(l)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFigure, "figure layout must be a mapping, got %T", l)
	}
	return f, nil
}

func tracesFromList(list []any) ([]Trace, error) {
	data := make([]Trace, 0, len(list))
	for i, item := range list {
		t, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFigure, "data[%d] must be a mapping, got %T", i, item)
		}
		data = append(data, maps.Clone(t))
	}
	return data, nil
}
