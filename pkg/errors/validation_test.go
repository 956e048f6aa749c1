package errors

import (
	"strings"
	"testing"
)

func TestValidateImageFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"png", "png", false},
		{"jpeg", "jpeg", false},
		{"svg", "svg", false},
		{"webp", "webp", false},

		{"empty", "", true},
		{"jpg alias", "jpg", true},
		{"pdf", "pdf", true},
		{"uppercase", "PNG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidImageFormat) {
				t.Errorf("ValidateImageFormat(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidImageFormat)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "temp-plot.html", false},
		{"relative path", "out/chart.html", false},
		{"absolute path", "/tmp/chart.html", false},
		{"no extension", "chart", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 1100), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDownloadName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "newplot", false},
		{"with dash", "my-plot_2", false},

		{"empty", "", true},
		{"single quote", "it's", true},
		{"script tag", "<script>", true},
		{"path", "a/b", true},
		{"backslash", `a\b`, true},
		{"tab", "a\tb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDownloadName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDownloadName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://plot.ly", false},
		{"http", "http://plotly.internal:8080", false},

		{"empty", "", true},
		{"no scheme", "plot.ly", true},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
