package testsupport

import (
	"path/filepath"
	"testing"

	"foodhub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The memory backend is the default; use WithBackend for persistent ones.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = config.BackendMemory
	cfgVal.Storage.LockTimeoutSeconds = 1
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the storage backend.
func WithBackend(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = name
	}
}

// WithStorageKey overrides the document key.
func WithStorageKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Key = key
	}
}

// WithDisplaySeconds overrides the token confirmation window.
func WithDisplaySeconds(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.DisplaySeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
