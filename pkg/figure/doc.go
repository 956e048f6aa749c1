// Package figure models the chart description consumed by plotly.js and
// serializes it to the JSON payloads that Plotly.newPlot expects.
//
// # Overview
//
// A [Figure] is a list of traces (series entries) plus a layout mapping. Both
// are treated as opaque: this package never interprets trace properties, and
// it reads only layout.width and layout.height from the layout.
//
// Callers rarely build a [Figure] by hand. [FromAny] accepts every shape the
// rendering entry points take:
//
//   - a [Figure] or *[Figure]
//   - a data list: []map[string]any or []any of mappings
//   - a figure mapping: map[string]any with "data" and "layout" keys
//   - raw JSON ([]byte, json.RawMessage, or string) in either of the two shapes above
//
// # Dimensions
//
// Width and height are [Dimension] values, a tagged union of [Pixels] and
// [Literal]. Numbers become pixel strings ("800px"); strings such as "100%"
// pass through unchanged. Resolution happens once, in [Figure.Size].
//
// # Serialization
//
// [Serialize] produces a [Payload] of three JSON strings (data, layout,
// config). The encoder maps NaN and ±Inf to null and time.Time to ISO 8601,
// matching what plotly.js parses.
//
//	fig, err := figure.Normalize(input, true, nil)
//	if err != nil {
//	    return err
//	}
//	p, err := figure.Serialize(fig, figure.Config{ShowLink: true, LinkText: "Export to plot.ly"})
package figure
