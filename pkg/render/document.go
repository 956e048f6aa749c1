package render

import (
	"strings"
)

// ResizeScript returns a script that resizes the plot with the given element
// id whenever the window is resized.
func ResizeScript(id string) string {
	// Encoding a string cannot fail.
	target, _ := jsString(id)
	return `<script type="text/javascript">` +
		`window.addEventListener("resize", function(){` +
		`Plotly.Plots.resize(document.getElementById(` + target + `));});` +
		`</script>`
}

// NeedsResize reports whether the fragment has a percentage dimension and so
// must follow window resizes.
func NeedsResize(f *Fragment) bool {
	return f.Width.IsPercent() || f.Height.IsPercent()
}

// InlineScript wraps JavaScript source in a script element. Any "</script"
// inside the source is escaped so it cannot terminate the element early.
func InlineScript(src string) string {
	return `<script type="text/javascript">` + escapeScriptClose(src) + `</script>`
}

// Document renders a standalone HTML page around f. When library is
// non-empty it is inlined before the plot.
func Document(f *Fragment, library string) string {
	var b strings.Builder
	b.Grow(len(library) + len(f.HTML) + 256)

	b.WriteString(`<html><head><meta charset="utf-8" /></head><body>`)
	if library != "" {
		b.WriteString(InlineScript(library))
	}
	b.WriteString(f.HTML)
	if NeedsResize(f) {
		b.WriteString(ResizeScript(f.ID))
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// Embeddable renders f for inclusion in another page. When library is
// non-empty the result is a wrapping div carrying the library and the plot.
func Embeddable(f *Fragment, library string) string {
	if library == "" {
		return f.HTML
	}
	return `<div>` + InlineScript(library) + f.HTML + `</div>`
}

func escapeScriptClose(src string) string {
	if !strings.Contains(src, "</script") {
		return src
	}
	return strings.ReplaceAll(src, "</script", `<\/script`)
}
