package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the talent_search binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "talent_search"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/talent_search ./cmd/talent_search'", binaryPath)
	}

	return binaryPath
}
