package errors

import (
	"strings"
	"unicode"
)

// ValidatePresetName validates a preset name for safety and correctness.
// Preset names become file names in the file store backend, so the rules are
// intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences (.., /, \)
//   - No null bytes
//   - Maximum length of 128 characters
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "preset name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "preset name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "preset name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "preset name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "preset name cannot contain traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "preset name cannot start with a dot")
	}

	return nil
}

// ValidateFolderName validates a preset folder name.
// Folders become directories in the file store backend and key prefixes in the
// Redis and Mongo backends, so the same character rules apply as for names.
func ValidateFolderName(folder string) error {
	if folder == "" {
		return New(ErrCodeInvalidName, "folder name cannot be empty")
	}

	if len(folder) > 128 {
		return New(ErrCodeInvalidName, "folder name too long (max 128 characters)")
	}

	for _, r := range folder {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "folder name contains invalid control characters")
		}
	}

	if strings.ContainsAny(folder, "/\\") {
		return New(ErrCodeInvalidName, "folder name cannot contain path separators")
	}

	if strings.Contains(folder, "..") {
		return New(ErrCodeInvalidName, "folder name cannot contain traversal sequences (..)")
	}

	return nil
}
