package render

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

// DefaultCDNModule is the requirejs module path for plotly.js. requirejs
// appends the .js extension itself.
const DefaultCDNModule = "https://cdn.plot.ly/plotly-latest.min"

// CDNModule converts a library URL into a requirejs module path.
func CDNModule(url string) string {
	if url == "" {
		return DefaultCDNModule
	}
	return strings.TrimSuffix(url, ".js")
}

// ConnectedBootstrap returns the script that loads plotly.js from module on
// pages where window.Plotly is not yet defined.
func ConnectedBootstrap(module string) (string, error) {
	mod, err := jsString(CDNModule(module))
	if err != nil {
		return "", err
	}
	return `<script>` +
		`requirejs.config({paths: { 'plotly': [` + mod + `]},});` +
		`if(!window.Plotly) {require(['plotly'],function(plotly) {window.Plotly=plotly;});}` +
		`</script>`, nil
}

// LocalBootstrap returns the script that defines plotly.js inline as an AMD
// module from library, on pages where window.Plotly is not yet defined.
func LocalBootstrap(library string) (string, error) {
	if strings.TrimSpace(library) == "" {
		return "", errors.New(errors.ErrCodeBundleUnavailable, "library source is empty")
	}
	return `<script type='text/javascript'>` +
		`if(!window.Plotly){` +
		`define('plotly', function(require, exports, module) {` + escapeScriptClose(library) + `});` +
		`require(['plotly'], function(Plotly) {window.Plotly = Plotly;});` +
		`}` +
		`</script>`, nil
}

// Image describes an image export requested from plotly.js.
type Image struct {
	Format   string // png, jpeg, svg, or webp
	Width    int    // pixels
	Height   int    // pixels
	Filename string // without extension
}

// DefaultImage returns an 800x600 PNG named "newplot".
func DefaultImage() Image {
	return Image{Format: "png", Width: 800, Height: 600, Filename: "newplot"}
}

// Validate checks the format, the size, and the filename.
func (img Image) Validate() error {
	if err := errors.ValidateImageFormat(img.Format); err != nil {
		return err
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidDimension, "image size must be positive, got %dx%d", img.Width, img.Height)
	}
	return errors.ValidateDownloadName(img.Filename)
}

// options renders the plotly.js downloadImage options object.
func (img Image) options() (string, error) {
	format, err := jsString(img.Format)
	if err != nil {
		return "", err
	}
	name, err := jsString(img.Filename)
	if err != nil {
		return "", err
	}
	return `{format: ` + format +
		`, height: ` + strconv.Itoa(img.Height) +
		`, width: ` + strconv.Itoa(img.Width) +
		`, filename: ` + name + `}`, nil
}

// DownloadScript returns a script exporting the plot with element id as img.
func DownloadScript(id string, img Image) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}
	opts, err := img.options()
	if err != nil {
		return "", err
	}
	target, err := jsString(id)
	if err != nil {
		return "", err
	}
	return `<script>Plotly.downloadImage(` + target + `, ` + opts + `);</script>`, nil
}

var notebookDownloadTmpl = template.Must(template.New("notebook_download").Parse(
	`<script>` +
		`function downloadimage(format, height, width, filename) {` +
		`var elementsList = document.querySelectorAll('.code_cell');` +
		`var new_list = new Array();` +
		`for(var i=0; i < elementsList.length; i++) {` +
		`if(elementsList[i].classList.contains('selected')) {break;};` +
		`var temp = elementsList[i].getElementsByClassName('plot-container plotly');` +
		`if (temp.length > 0) {new_list.push(temp[0]);}` +
		`}` +
		`if (new_list.length>0) {` +
		`var pre_div = new_list.slice(-1)[0];` +
		`var p = document.getElementById(pre_div.parentElement.id);` +
		`Plotly.downloadImage(p, {format: format, height: height, width: width, filename: filename});` +
		`}` +
		`}` +
		`downloadimage({{.Format}}, {{.Height}}, {{.Width}}, {{.Filename}});` +
		`</script>`))

// NotebookDownloadScript returns a script that exports the most recent plot
// rendered above the selected notebook cell.
func NotebookDownloadScript(img Image) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}
	format, err := jsString(img.Format)
	if err != nil {
		return "", err
	}
	name, err := jsString(img.Filename)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = notebookDownloadTmpl.Execute(&buf, struct {
		Format, Filename string
		Width, Height    int
	}{format, name, img.Width, img.Height})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "render download script")
	}
	return buf.String(), nil
}
