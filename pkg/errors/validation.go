package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// ExportExtensions is the allow-list of export file extensions (without dot).
var ExportExtensions = []string{"svg", "pdf", "png", "jpg", "jpeg", "json", "dot"}

// ValidateExportFile validates an export file name.
// The name must be a plain file name (no directories) ending in one of
// [ExportExtensions]. Extensions are matched case-insensitively.
func ValidateExportFile(name string) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !slices.Contains(ExportExtensions, ext) {
		return New(ErrCodeUnsupportedFormat, "unsupported export file %q (must end in one of: .%s)",
			name, strings.Join(ExportExtensions, ", ."))
	}
	return nil
}

// ValidateFileName validates that name is a simple file name safe to join
// onto an export directory.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators
//   - Not "." or ".."
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "file name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators: %q", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot be %q", name)
	}

	return nil
}

// ValidatePath validates an export directory path.
//
// Validation rules:
//   - Empty means the current directory and is accepted
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	const maxPathLength = 500
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
