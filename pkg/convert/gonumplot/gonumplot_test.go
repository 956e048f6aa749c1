package gonumplot

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/offlineplot/pkg/convert"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/figure"
)

func samplePoints() plotter.XYs {
	return plotter.XYs{{X: 1, Y: 5}, {X: 2, Y: 2}, {X: 3, Y: 7}}
}

func TestConvertLine(t *testing.T) {
	fig := New()
	fig.Plot.Title.Text = "Latency"
	fig.Plot.X.Label.Text = "t"
	fig.Plot.Y.Label.Text = "ms"

	line, err := plotter.NewLine(samplePoints())
	if err != nil {
		t.Fatal(err)
	}
	line.Color = color.RGBA{R: 200, A: 255}
	line.Width = vg.Points(3)
	fig.Add("p99", line)

	out, err := Converter{}.Convert(fig, convert.Options{})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if len(out.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1", len(out.Data))
	}

	tr := out.Data[0]
	if tr["type"] != "scatter" || tr["mode"] != "lines" || tr["name"] != "p99" {
		t.Errorf("trace header = %v %v %v", tr["type"], tr["mode"], tr["name"])
	}
	lineStyle := tr["line"].(map[string]any)
	if lineStyle["color"] != "rgb(200,0,0)" {
		t.Errorf("line color = %v", lineStyle["color"])
	}
	if lineStyle["width"] != 4.0 {
		t.Errorf("line width = %v, want 4 (3pt in px)", lineStyle["width"])
	}

	p, err := figure.Serialize(out, figure.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Data, `"x":[1,2,3]`) || !strings.Contains(p.Data, `"y":[5,2,7]`) {
		t.Errorf("data = %s", p.Data)
	}
	for _, want := range []string{`"title":{"text":"Latency"}`, `"showlegend":true`, `"width":576`, `"height":384`} {
		if !strings.Contains(p.Layout, want) {
			t.Errorf("layout missing %s: %s", want, p.Layout)
		}
	}
}

func TestConvertOptions(t *testing.T) {
	fig := New()
	line, _ := plotter.NewLine(samplePoints())
	line.Color = color.Black
	fig.Add("", line)

	out, err := Converter{}.Convert(fig, convert.Options{Resize: true, StripStyle: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Layout["width"]; ok {
		t.Error("Resize should drop the width")
	}
	if _, ok := out.Data[0]["line"]; ok {
		t.Error("StripStyle should drop line styling")
	}
	if _, ok := out.Layout["showlegend"]; ok {
		t.Error("unnamed traces should not show a legend")
	}
}

func TestConvertScatterBarHistogram(t *testing.T) {
	fig := New()

	sc, _ := plotter.NewScatter(samplePoints())
	sc.GlyphStyle.Radius = vg.Points(3)
	fig.Add("points", sc)

	bars, _ := plotter.NewBarChart(plotter.Values{4, 5, 6}, vg.Points(10))
	bars.Horizontal = true
	fig.Add("bars", bars)

	hist, _ := plotter.NewHist(plotter.Values{1, 1, 2, 3, 3, 3}, 3)
	fig.Add("hist", hist)

	fig.Add("", plotter.NewGrid())

	out, err := Converter{}.Convert(fig, convert.Options{})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if len(out.Data) != 3 {
		t.Fatalf("len(Data) = %d, want 3 (grid is layout only)", len(out.Data))
	}

	if out.Data[0]["mode"] != "markers" {
		t.Errorf("scatter mode = %v", out.Data[0]["mode"])
	}
	if m := out.Data[0]["marker"].(map[string]any); m["size"] != 8.0 {
		t.Errorf("marker size = %v, want 8", m["size"])
	}

	if out.Data[1]["orientation"] != "h" {
		t.Errorf("bar orientation = %v", out.Data[1]["orientation"])
	}
	if xs := out.Data[1]["x"].([]float64); len(xs) != 3 || xs[2] != 6 {
		t.Errorf("horizontal bar values = %v", xs)
	}

	if out.Data[2]["type"] != "bar" {
		t.Errorf("histogram type = %v", out.Data[2]["type"])
	}
	if ys := out.Data[2]["y"].([]float64); len(ys) != 3 {
		t.Errorf("histogram bins = %v", ys)
	}
	if out.Layout["bargap"] != 0 {
		t.Errorf("bargap = %v, want 0", out.Layout["bargap"])
	}
	if xa := out.Layout["xaxis"].(map[string]any); xa["showgrid"] != true {
		t.Error("grid should enable showgrid")
	}

	if err := figure.DefaultValidator.Validate(out); err != nil {
		t.Errorf("converted figure fails validation: %v", err)
	}
}

func TestConvertAxes(t *testing.T) {
	fig := New()
	fig.Plot.Y.Scale = plot.LogScale{}
	fig.Plot.Y.Tick.Marker = plot.LogTicks{}
	line, _ := plotter.NewLine(plotter.XYs{{X: 1, Y: 10}, {X: 2, Y: 100}})
	fig.Add("", line)
	fig.SetYRange(1, 1000)

	out, err := Converter{}.Convert(fig, convert.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ya := out.Layout["yaxis"].(map[string]any)
	if ya["type"] != "log" {
		t.Errorf("yaxis type = %v, want log", ya["type"])
	}
	r := ya["range"].([]float64)
	if math.Abs(r[0]) > 1e-9 || math.Abs(r[1]-3) > 1e-9 {
		t.Errorf("log range = %v, want [0 3]", r)
	}
	if _, ok := out.Layout["xaxis"].(map[string]any)["range"]; ok {
		t.Error("unset x range should autoscale")
	}
}

func TestConvertTimeAxis(t *testing.T) {
	fig := New()
	fig.Plot.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	line, _ := plotter.NewLine(plotter.XYs{{X: float64(day.Unix()), Y: 1}})
	fig.Add("", line)

	out, err := Converter{}.Convert(fig, convert.Options{})
	if err != nil {
		t.Fatal(err)
	}
	xs, ok := out.Data[0]["x"].([]time.Time)
	if !ok || !xs[0].Equal(day) {
		t.Errorf("x = %v, want [%v]", out.Data[0]["x"], day)
	}
	if out.Layout["xaxis"].(map[string]any)["type"] != "date" {
		t.Error("time ticks should produce a date axis")
	}
}

func TestConvertVerbose(t *testing.T) {
	var buf bytes.Buffer
	fig := New()
	line, _ := plotter.NewLine(samplePoints())
	fig.Add("a", line)

	_, err := Converter{}.Convert(fig, convert.Options{Verbose: true, Logger: log.New(&buf)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "converted plotter") {
		t.Errorf("verbose output missing: %q", buf.String())
	}
}

func TestConvertUnsupported(t *testing.T) {
	if _, err := (Converter{}).Convert("not a plot", convert.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("string input error = %v, want UNSUPPORTED", err)
	}
	if _, err := (Converter{}).Convert((*Figure)(nil), convert.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("nil figure error = %v, want UNSUPPORTED", err)
	}

	fig := New()
	fig.Add("f", plotter.NewFunction(func(x float64) float64 { return x * x }))
	if _, err := (Converter{}).Convert(fig, convert.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("function plotter error = %v, want UNSUPPORTED", err)
	}
}
