package utils

import "strings"

// SanitizeHeaderFilename removes characters that can break the
// Content-Disposition header.
func SanitizeHeaderFilename(name string) string {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "download"
	}
	for _, bad := range []string{"\r", "\n", "\"", ";"} {
		clean = strings.ReplaceAll(clean, bad, "")
	}
	if clean == "" {
		return "download"
	}
	return clean
}
