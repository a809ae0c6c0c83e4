package gsd

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// VersionNotInstalled is reported when the VERSION marker does not exist.
	VersionNotInstalled = "not installed"
	// VersionUnknown is reported when the marker exists but cannot be read.
	VersionUnknown = "unknown"
)

// VersionFile returns the location of the GSD version marker under sourceDir.
func VersionFile(sourceDir string) string {
	return filepath.Join(sourceDir, "get-shit-done", "VERSION")
}

// ReadVersion returns the trimmed content of the GSD version marker. It never
// fails: a missing marker yields VersionNotInstalled and an unreadable or
// non UTF-8 one yields VersionUnknown.
func ReadVersion(sourceDir string) string {
	path := VersionFile(sourceDir)
	if _, err := os.Stat(path); err != nil {
		return VersionNotInstalled
	}

	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return VersionUnknown
	}

	return strings.TrimSpace(string(data))
}
