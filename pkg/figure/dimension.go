package figure

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

type dimensionKind uint8

const (
	dimensionUnset dimensionKind = iota
	dimensionPixels
	dimensionLiteral
)

// Dimension is a CSS size for the chart container: either a pixel count or a
// literal CSS value such as "100%". The zero value is unset.
type Dimension struct {
	kind dimensionKind
	px   float64
	lit  string
}

// Pixels returns a pixel dimension.
func Pixels(n float64) Dimension { return Dimension{kind: dimensionPixels, px: n} }

// Literal returns a dimension rendered verbatim.
func Literal(s string) Dimension { return Dimension{kind: dimensionLiteral, lit: s} }

// Percent returns a percentage literal, e.g. Percent(100) is "100%".
func Percent(n float64) Dimension {
	return Literal(strconv.FormatFloat(n, 'f', -1, 64) + "%")
}

// ParseDimension converts a layout value into a Dimension. Numbers and
// numeric strings become [Pixels]; other strings become [Literal].
func ParseDimension(v any) (Dimension, error) {
	switch t := v.(type) {
	case Dimension:
		return t, nil
	case float64:
		return checkedPixels(t)
	case float32:
		return checkedPixels(float64(t))
	case int:
		return Pixels(float64(t)), nil
	case int64:
		return Pixels(float64(t)), nil
	case int32:
		return Pixels(float64(t)), nil
	case uint:
		return Pixels(float64(t)), nil
	case uint64:
		return Pixels(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Dimension{}, errors.Wrap(errors.ErrCodeInvalidDimension, err, "invalid dimension %q", t.String())
		}
		return checkedPixels(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Dimension{}, errors.New(errors.ErrCodeInvalidDimension, "dimension cannot be empty")
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return checkedPixels(f)
		}
		return Literal(s), nil
	default:
		return Dimension{}, errors.New(errors.ErrCodeInvalidDimension, "unsupported dimension type %T", v)
	}
}

func checkedPixels(f float64) (Dimension, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Dimension{}, errors.New(errors.ErrCodeInvalidDimension, "dimension must be finite")
	}
	return Pixels(f), nil
}

// MustDimension is like ParseDimension but panics on error.
// It is intended for package-level defaults.
func MustDimension(v any) Dimension {
	d, err := ParseDimension(v)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the dimension as a CSS value.
func (d Dimension) String() string {
	switch d.kind {
	case dimensionPixels:
		return strconv.FormatFloat(d.px, 'f', -1, 64) + "px"
	case dimensionLiteral:
		return d.lit
	default:
		return ""
	}
}

// IsZero reports whether the dimension is unset.
func (d Dimension) IsZero() bool { return d.kind == dimensionUnset }

// PixelValue returns the pixel count and whether d is a pixel dimension.
func (d Dimension) PixelValue() (float64, bool) {
	return d.px, d.kind == dimensionPixels
}

// IsPercent reports whether d is a percentage literal.
func (d Dimension) IsPercent() bool {
	return d.kind == dimensionLiteral && strings.HasSuffix(d.lit, "%")
}

// Or returns d, or fallback when d is unset.
func (d Dimension) Or(fallback Dimension) Dimension {
	if d.IsZero() {
		return fallback
	}
	return d
}

// MarshalJSON encodes pixels as a number and literals as a string, the shape
// plotly.js accepts for layout.width.
func (d Dimension) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case dimensionPixels:
		return json.Marshal(d.px)
	case dimensionLiteral:
		return json.Marshal(d.lit)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number or a string.
func (d *Dimension) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*d = Dimension{}
		return nil
	}
	parsed, err := ParseDimension(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalText lets Dimension be used directly as a TOML value or flag.
func (d *Dimension) UnmarshalText(b []byte) error {
	parsed, err := ParseDimension(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText renders the dimension as accepted by UnmarshalText. Pixels are
// written without the px suffix so the round trip stays numeric.
func (d Dimension) MarshalText() ([]byte, error) {
	if px, ok := d.PixelValue(); ok {
		return []byte(strconv.FormatFloat(px, 'f', -1, 64)), nil
	}
	return []byte(d.lit), nil
}
