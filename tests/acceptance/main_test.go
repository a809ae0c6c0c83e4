package acceptance

import (
	"os"
	"path/filepath"
	"testing"
)

// binaryPath is the gsd-converter binary under test, built with
// go build -o bin/gsd-converter ./cmd/gsd-converter
var binaryPath = "../../bin/gsd-converter"

// TestMain runs setup and teardown for acceptance tests
func TestMain(m *testing.M) {
	if p := os.Getenv("GSD_CONVERTER_BINARY"); p != "" {
		binaryPath = p
	}
	if abs, err := filepath.Abs(binaryPath); err == nil {
		binaryPath = abs
	}

	code := m.Run()
	os.Exit(code)
}

func requireBinary(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("gsd-converter binary not found at %s", binaryPath)
	}
}
