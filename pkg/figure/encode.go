package figure

import (
	"encoding/json"
	"math"
	"time"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

// dateLayout is used for timestamps that fall exactly on midnight in their own
// location, which plotly.js treats as calendar dates.
const dateLayout = "2006-01-02"

// Marshal encodes v as JSON for plotly.js. Non-finite floats become null and
// time.Time values become ISO 8601 strings. HTML-sensitive characters are
// escaped, so the result is safe to place inside a <script> element.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(sanitize(v))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFigure, err, "encode figure")
	}
	return b, nil
}

// sanitize rewrites the value kinds encoding/json cannot represent the way
// plotly.js expects. Unknown types are returned unchanged.
func sanitize(v any) any {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case time.Time:
		return formatTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return formatTime(*t)
	case Dimension:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sanitize(val)
		}
		return out
	case []Trace:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = finite(val)
		}
		return out
	case []float32:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = finite(float64(val))
		}
		return out
	case []time.Time:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = formatTime(val)
		}
		return out
	case [][]float64:
		out := make([]any, len(t))
		for i, row := range t {
			out[i] = sanitize(row)
		}
		return out
	case json.RawMessage:
		return t
	case []byte:
		out := make([]int, len(t))
		for i, b := range t {
			out[i] = int(b)
		}
		return out
	default:
		return v
	}
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}
