package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ImageFormats lists the export formats plotly.js accepts for downloadImage.
var ImageFormats = []string{"png", "jpeg", "svg", "webp"}

// ValidateImageFormat checks that format is one plotly.js can export.
func ValidateImageFormat(format string) error {
	if !slices.Contains(ImageFormats, format) {
		return New(ErrCodeInvalidImageFormat, "invalid image format %q (must be one of: %s)",
			format, strings.Join(ImageFormats, ", "))
	}
	return nil
}

// ValidateFilename validates an output filename for the standalone document.
//
// Validation rules:
//   - Filename cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	const maxPathLength = 1024
	if len(name) > maxPathLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxPathLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}
	return nil
}

// ValidateDownloadName validates the basename handed to plotly.js for image
// downloads. The browser saves the file under this name, so quotes,
// backslashes and path separators are rejected.
func ValidateDownloadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "download filename cannot be empty")
	}
	if strings.ContainsAny(name, `'"\/<>`) {
		return New(ErrCodeInvalidInput, "download filename contains invalid characters: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "download filename contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
