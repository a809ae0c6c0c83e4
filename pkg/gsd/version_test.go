package gsd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVersion(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string)
		expected string
	}{
		{
			name:     "missing marker",
			setup:    func(*testing.T, string) {},
			expected: VersionNotInstalled,
		},
		{
			name: "trailing newline is trimmed",
			setup: func(t *testing.T, dir string) {
				writeFile(t, VersionFile(dir), "1.2.3\n")
			},
			expected: "1.2.3",
		},
		{
			name: "surrounding whitespace is trimmed",
			setup: func(t *testing.T, dir string) {
				writeFile(t, VersionFile(dir), "  v2.0.0-beta \r\n\n")
			},
			expected: "v2.0.0-beta",
		},
		{
			name: "not utf-8",
			setup: func(t *testing.T, dir string) {
				writeFile(t, VersionFile(dir), "\xff\xfe1.0")
			},
			expected: VersionUnknown,
		},
		{
			name: "marker is a directory",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.MkdirAll(VersionFile(dir), 0o755))
			},
			expected: VersionUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			assert.Equal(t, tt.expected, ReadVersion(dir))
		})
	}
}

func TestVersionFile(t *testing.T) {
	assert.Equal(t, filepath.Join(".claude", "get-shit-done", "VERSION"), VersionFile(".claude"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
