package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateLabel validates an item label from a manifest.
// Labels are shown in previews and API responses, so they must be short
// single-line text.
func ValidateLabel(label string) error {
	const maxLabelLength = 64
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidManifest, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateManifestPath validates the path of a manifest file.
// Only .toml and .json manifests are accepted.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "manifest path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "manifest path contains invalid characters")
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".json":
		return nil
	default:
		return New(ErrCodeInvalidPath, "unsupported manifest extension %q (must be .toml or .json)", filepath.Ext(path))
	}
}

// ValidatePosition checks that pos addresses one of count items.
func ValidatePosition(pos, count int) error {
	if pos < 0 || pos >= count {
		return New(ErrCodeInvalidInput, "position %d out of range [0, %d)", pos, count)
	}
	return nil
}
