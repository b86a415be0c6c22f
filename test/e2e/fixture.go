package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/bookmarks/internal/config"
)

// buildBookmarks builds the bookmarks binary for testing.
// Returns the path to the binary and a cleanup function.
func buildBookmarks(t *testing.T) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests build the binary; skipped in -short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
	dir := t.TempDir()
	binPath := filepath.Join(dir, "bookmarks")

	// Get the project root directory
	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// Assume we are in test/e2e, go up 2 levels
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/bookmarks")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	return binPath, func() { os.RemoveAll(dir) }
}

// seedFixtureConfig writes a small, deterministic config under homeDir.
func seedFixtureConfig(homeDir string) error {
	cfg := config.DefaultConfig()
	cfg.Data.DefaultCount = 1000
	cfg.Data.Seed = 42
	cfg.View.Debounce = 50 * time.Millisecond
	return cfg.Save(filepath.Join(homeDir, ".bookmarks", "config.yaml"))
}
