package sanitize

import (
	"strings"
	"unicode"
)

// ObjectKeyPart normalizes an uploaded file's base name so it can be embedded
// into an object-storage key: control characters, path separators and
// whitespace runs are stripped or collapsed, and the result is lowercased.
func ObjectKeyPart(name string) string {
	// Drop the extension; the upload pipeline appends its own based on the
	// sniffed content type.
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}

	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case unicode.IsControl(r):
			// skip
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "file"
	}
	if len(result) > 100 {
		result = strings.Trim(result[:100], "-")
	}
	return result
}
