package middleware

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const maxFilenameLength = 120

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips any path components and unsafe characters so the
// stored name is safe to echo back and to use as an object-storage key.
// An empty or fully unsafe name becomes "upload".
func SanitizeFilename(name string) string {
	// Drop directories; handle both separators regardless of client OS.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// SanitizeString removes null bytes and control characters from free text.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidatePatientName caps the stored patient name at the column width.
func ValidatePatientName(name string) string {
	name = SanitizeString(name)
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	return name
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
