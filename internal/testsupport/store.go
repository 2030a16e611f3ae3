package testsupport

import (
	"testing"

	"imgcat/internal/catalog"
	"imgcat/internal/config"
)

// MustOpenStore opens the catalog at cfg.Paths.Database and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
