package figure

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{"int", 800, "800px", false},
		{"int64", int64(600), "600px", false},
		{"float", 525.0, "525px", false},
		{"fractional", 10.25, "10.25px", false},
		{"float32", float32(2.5), "2.5px", false},
		{"json number", json.Number("300"), "300px", false},
		{"percent", "100%", "100%", false},
		{"numeric string", "450", "450px", false},
		{"padded string", " 50% ", "50%", false},
		{"css units", "20em", "20em", false},
		{"px string passes through", "800px", "800px", false},
		{"dimension", Percent(75), "75%", false},

		{"empty string", "", "", true},
		{"nan", math.NaN(), "", true},
		{"inf", math.Inf(1), "", true},
		{"bool", true, "", true},
		{"bad json number", json.Number("abc"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDimension(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDimension(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseDimension(%v) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestPixelWidthsAlwaysSuffixed(t *testing.T) {
	for _, w := range []float64{0, 1, 99, 100, 800, 1280.5, 1e4} {
		d := Pixels(w)
		px, ok := d.PixelValue()
		if !ok || px != w {
			t.Errorf("Pixels(%v).PixelValue() = %v, %v", w, px, ok)
		}
		if got := d.String(); got[len(got)-2:] != "px" {
			t.Errorf("Pixels(%v).String() = %q, want px suffix", w, got)
		}
	}
}

func TestDimensionPredicates(t *testing.T) {
	if !(Dimension{}).IsZero() {
		t.Error("zero Dimension should be unset")
	}
	if Pixels(0).IsZero() {
		t.Error("Pixels(0) should be set")
	}
	if !Percent(100).IsPercent() {
		t.Error("Percent(100) should be a percentage")
	}
	if Literal("10em").IsPercent() || Pixels(100).IsPercent() {
		t.Error("only % literals are percentages")
	}
	if got := (Dimension{}).Or(Pixels(3)).String(); got != "3px" {
		t.Errorf("Or() = %q, want 3px", got)
	}
	if got := Literal("1em").Or(Pixels(3)).String(); got != "1em" {
		t.Errorf("Or() = %q, want 1em", got)
	}
}

func TestDimensionJSON(t *testing.T) {
	type box struct {
		W Dimension `json:"w"`
		H Dimension `json:"h"`
	}

	b, err := json.Marshal(box{W: Pixels(800), H: Percent(100)})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(b) != `{"w":800,"h":"100%"}` {
		t.Errorf("Marshal = %s", b)
	}

	var got box
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.W.String() != "800px" || got.H.String() != "100%" {
		t.Errorf("round trip = %q, %q", got.W, got.H)
	}
}

func TestDimensionText(t *testing.T) {
	var d Dimension
	if err := d.UnmarshalText([]byte("640")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	if d.String() != "640px" {
		t.Errorf("String() = %q, want 640px", d.String())
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText error: %v", err)
	}
	if string(text) != "640" {
		t.Errorf("MarshalText() = %q, want 640", text)
	}
}
