package testsupport

import (
	"testing"

	"foodhub/internal/config"
	"foodhub/internal/logging"
	"foodhub/internal/queue"
	"foodhub/internal/state"
)

// MustOpenStore opens a state.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustNewEngine opens a store for cfg and wraps it in a queue.Engine.
func MustNewEngine(t testing.TB, cfg *config.Config) (*queue.Engine, *state.Store) {
	t.Helper()

	store := MustOpenStore(t, cfg)
	return queue.New(store, logging.NewNop(), nil), store
}
