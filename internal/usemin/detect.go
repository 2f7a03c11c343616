package usemin

import (
	"path"
	"strings"
)

// IsHTMLDocument returns true when the path extension or leading bytes
// indicate HTML.
func IsHTMLDocument(docPath string, firstBytes []byte) bool {
	ext := strings.ToLower(path.Ext(docPath))
	if ext == ".html" || ext == ".htm" {
		return true
	}
	if len(firstBytes) > 0 {
		b := firstBytes
		// skip BOM
		if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
			b = b[3:]
		}
		trimmed := strings.TrimSpace(string(b))
		if strings.HasPrefix(trimmed, "<") {
			return true
		}
	}
	return false
}

// IsCSSDocument returns true for stylesheet paths.
func IsCSSDocument(docPath string) bool {
	return strings.ToLower(path.Ext(docPath)) == ".css"
}
