package errors

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Formats lists the artifact formats the pipeline can produce.
var Formats = []string{"swc", "json", "dot", "svg"}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(Formats, format) {
		return New(ErrCodeInvalidFormat, "unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateScaling checks an SWC coordinate divisor. It must be finite and
// strictly positive.
func ValidateScaling(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return New(ErrCodeInvalidScaling, "scaling must be finite, got %v", scale)
	}
	if scale <= 0 {
		return New(ErrCodeInvalidScaling, "scaling must be positive, got %v", scale)
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output path or prefix.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) after cleaning
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}
	return nil
}

// ValidateHeaderKey checks an SWC header key. Keys end up on a single
// "# key value" line, so they may not contain whitespace.
func ValidateHeaderKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "header key cannot be empty")
	}
	if strings.IndexFunc(key, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return New(ErrCodeInvalidInput, "header key %q contains whitespace", key)
	}
	return nil
}
