package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"testing"
	"time"
)

// newTestBackends возвращает по экземпляру каждого локального хранилища:
// in-memory и snapshot на SQLite в памяти (modernc.org/sqlite).
func newTestBackends(t *testing.T, load SnapshotLoader) map[string]Backend {
	t.Helper()
	db, err := InitDB("")
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	snap := NewSnapshotBackend(db, load)
	t.Cleanup(func() { _ = snap.Close(context.Background()) })
	return map[string]Backend{
		BackendMemory:   NewMemoryBackend(load),
		BackendSnapshot: snap,
	}
}

func staticLoader(snap *Snapshot) SnapshotLoader {
	return func() (*Snapshot, error) { return snap, nil }
}

func ptr[T any](v T) *T { return &v }

func wrapperAt(mn string, created time.Time) *model.Wrapper {
	return &model.Wrapper{
		ModelNumber: mn,
		Name:        "Wrapper " + mn,
		Price:       100,
		ImageURL:    "/" + mn + ".jpg",
		IsVisible:   true,
		CreatedAt:   created,
	}
}
