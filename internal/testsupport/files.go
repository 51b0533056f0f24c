package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"foodhub/internal/config"
)

// WriteStateFile seeds the file backend's payload for cfg with raw bytes,
// for example to simulate a corrupt document.
func WriteStateFile(t testing.TB, cfg *config.Config, payload []byte) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.StateDir, cfg.Storage.Key+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadStateFile returns the file backend's payload for cfg.
func ReadStateFile(t testing.TB, cfg *config.Config) []byte {
	t.Helper()

	path := filepath.Join(cfg.Paths.StateDir, cfg.Storage.Key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
