// Package render turns a chart description into the HTML and JavaScript that
// plotly.js needs: the plot fragment, the standalone document around it, and
// the notebook bootstrap and image-download scripts.
//
// Everything here is pure string generation. Delivery (files, browsers,
// notebook display channels) lives in the offline and notebook packages.
package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

const (
	// DefaultPlatformURL is the plotly service domain assumed when none is configured.
	DefaultPlatformURL = "https://plot.ly"

	// DefaultLinkText is the export link label shown under each plot.
	DefaultLinkText = "Export to plot.ly"
)

// Options controls how a fragment is rendered.
type Options struct {
	ShowLink bool
	LinkText string

	// Validate runs Validator (or figure.DefaultValidator) before rendering.
	Validate  bool
	Validator figure.Validator

	// DefaultWidth and DefaultHeight apply when the layout sets no size.
	DefaultWidth  figure.Dimension
	DefaultHeight figure.Dimension

	// RequireJS wraps the plot call in require(["plotly"], ...), which
	// notebook pages need because they load plotly.js as an AMD module.
	RequireJS bool

	// PlatformURL is written to window.PLOTLYENV.BASE_URL. Empty means
	// DefaultPlatformURL.
	PlatformURL string

	// NewID generates the container element id. Nil means a random UUID.
	NewID func() string
}

// Fragment is a rendered plot: a container div followed by the script that
// draws into it.
type Fragment struct {
	HTML   string
	ID     string
	Width  figure.Dimension
	Height figure.Dimension
}

var fragmentTmpl = template.Must(template.New("fragment").Parse(
	`<div id="{{.ID}}" style="height: {{html .Height}}; width: {{html .Width}};" class="plot-container plotly-graph-div"></div>` +
		`<script type="text/javascript">` +
		`{{if .RequireJS}}require(["plotly"], function(Plotly) { {{end}}` +
		`window.PLOTLYENV=window.PLOTLYENV || {};` +
		`window.PLOTLYENV.BASE_URL={{.BaseURL}};` +
		`Plotly.newPlot("{{.ID}}", {{.Data}}, {{.Layout}}, {{.Config}})` +
		`{{if .RequireJS}}});{{end}}` +
		`</script>`))

type fragmentData struct {
	ID            string
	Width, Height string
	RequireJS     bool
	BaseURL       string
	Data          string
	Layout        string
	Config        string
}

// Render normalizes figureOrData and renders it as a Fragment.
func Render(figureOrData any, opts Options) (*Fragment, error) {
	fig, err := figure.Normalize(figureOrData, opts.Validate, opts.Validator)
	if err != nil {
		return nil, err
	}

	width, height, err := fig.Size(opts.DefaultWidth, opts.DefaultHeight)
	if err != nil {
		return nil, err
	}
	if width.IsZero() || height.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "width and height must be set by the layout or the defaults")
	}

	platform := opts.PlatformURL
	if platform == "" {
		platform = DefaultPlatformURL
	}

	payload, err := figure.Serialize(fig, figure.Config{
		ShowLink: opts.ShowLink,
		LinkText: LinkText(platform, opts.LinkText),
	})
	if err != nil {
		return nil, err
	}

	id := newID(opts.NewID)
	baseURL, err := jsString(platform)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = fragmentTmpl.Execute(&buf, fragmentData{
		ID:        id,
		Width:     width.String(),
		Height:    height.String(),
		RequireJS: opts.RequireJS,
		BaseURL:   baseURL,
		Data:      payload.Data,
		Layout:    payload.Layout,
		Config:    payload.Config,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render fragment")
	}

	return &Fragment{HTML: buf.String(), ID: id, Width: width, Height: height}, nil
}

// LinkText returns the export link label for platformURL. The default label
// is rewritten to name a non-default platform domain; custom labels are kept.
func LinkText(platformURL, linkText string) string {
	if platformURL == "" || platformURL == DefaultPlatformURL || linkText != DefaultLinkText {
		return linkText
	}
	domain := strings.TrimPrefix(platformURL, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	return strings.Replace(linkText, "plot.ly", domain, 1)
}

func newID(gen func() string) string {
	if gen != nil {
		if id := gen(); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// jsString encodes s as a JavaScript string literal that is safe inside a
// <script> element.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode string")
	}
	return string(b), nil
}
