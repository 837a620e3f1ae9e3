package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePositive checks that a named numeric option is finite and > 0.
func ValidatePositive(code Code, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(code, "%s must be a finite number, got %v", name, v)
	}
	if v <= 0 {
		return New(code, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a named numeric option is finite and >= 0.
func ValidateNonNegative(code Code, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(code, "%s must be a finite number, got %v", name, v)
	}
	if v < 0 {
		return New(code, "%s cannot be negative, got %g", name, v)
	}
	return nil
}

// ValidateFootprint checks that all three extents of an object to be
// placed are positive.
func ValidateFootprint(l, w, h float64) error {
	for _, dim := range []struct {
		name string
		v    float64
	}{{"length", l}, {"width", w}, {"height", h}} {
		if err := ValidatePositive(ErrCodeInvalidFootprint, "footprint "+dim.name, dim.v); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a local file path supplied on the command line or
// in a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
