package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Контракт хранилища одинаков для всех реализаций
func TestBackends_InsertFindCount(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.HealthCheck(ctx))

			w := wrapperAt("MC001", time.Time{})
			id, err := b.Wrappers().InsertOne(ctx, w)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Equal(t, id, w.ID, "assigned id is written back")
			assert.False(t, w.CreatedAt.IsZero(), "createdAt stamped")
			assert.Equal(t, []string{}, w.LikedBy)

			got, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
			require.NoError(t, err)
			assert.Equal(t, "MC001", got.ModelNumber)
			assert.Equal(t, 100.0, got.Price)

			got, err = b.Wrappers().FindOne(ctx, Filter{ModelNumber: "MC001"})
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)

			_, err = b.Wrappers().FindOne(ctx, Filter{ID: "missing"})
			assert.ErrorIs(t, err, ErrNotFound)

			// у обёрток нет username: такой фильтр ничего не находит
			all, err := b.Wrappers().FindAll(ctx, Filter{Username: "admin"}, SortNone)
			require.NoError(t, err)
			assert.Empty(t, all)

			n, err := b.Wrappers().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestBackends_InsertManyKeepsOrderAndIDs(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			preset := wrapperAt("MC002", time.Time{})
			preset.ID = "preset-id"
			ids, err := b.Wrappers().InsertMany(ctx, []*model.Wrapper{wrapperAt("MC001", time.Time{}), preset})
			require.NoError(t, err)
			require.Len(t, ids, 2)
			assert.Equal(t, "preset-id", ids[1])
			assert.NotEqual(t, ids[0], ids[1])

			_, err = b.Wrappers().FindOne(ctx, Filter{ID: "preset-id"})
			assert.NoError(t, err)
		})
	}
}

// Занятый id отклоняется одинаково во всех хранилищах
func TestBackends_DuplicateID(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := wrapperAt("MC001", time.Time{})
			first.ID = "dup"
			_, err := b.Wrappers().InsertOne(ctx, first)
			require.NoError(t, err)

			second := wrapperAt("MC002", time.Time{})
			second.ID = "dup"
			_, err = b.Wrappers().InsertOne(ctx, second)
			assert.ErrorIs(t, err, ErrDuplicateID)

			other := wrapperAt("MC003", time.Time{})
			other.ID = "other"
			again := wrapperAt("MC004", time.Time{})
			again.ID = "other"
			_, err = b.Wrappers().InsertMany(ctx, []*model.Wrapper{other, again})
			assert.ErrorIs(t, err, ErrDuplicateID)

			n, err := b.Wrappers().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			got, err := b.Wrappers().FindOne(ctx, Filter{ID: "dup"})
			require.NoError(t, err)
			assert.Equal(t, "MC001", got.ModelNumber)
		})
	}
}

func TestBackends_FindAllSortAndVisibility(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			future := wrapperAt("MC003", base.Add(2*time.Hour))
			future.ScheduledDate = ptr(base.Add(24 * time.Hour))
			past := wrapperAt("MC002", base.Add(time.Hour))
			past.ScheduledDate = ptr(base.Add(-time.Hour))
			hidden := wrapperAt("MC001", base)
			hidden.IsVisible = false

			_, err := b.Wrappers().InsertMany(ctx, []*model.Wrapper{hidden, future, past})
			require.NoError(t, err)

			all, err := b.Wrappers().FindAll(ctx, Filter{}, SortCreatedAt)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"MC003", "MC002", "MC001"}, modelNumbers(all))

			visible, err := b.Wrappers().FindAll(ctx, Filter{VisibleAt: &base}, SortCreatedAt)
			require.NoError(t, err)
			assert.Equal(t, []string{"MC002", "MC001"}, modelNumbers(visible), "isVisible does not affect the listing")

			byNumber, err := b.Wrappers().FindAll(ctx, Filter{}, SortModelNumber)
			require.NoError(t, err)
			assert.Equal(t, []string{"MC003", "MC002", "MC001"}, modelNumbers(byNumber))
		})
	}
}

func TestBackends_UpdateDelete(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			w := wrapperAt("MC001", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
			id, err := b.Wrappers().InsertOne(ctx, w)
			require.NoError(t, err)

			matched, err := b.Wrappers().UpdateOne(ctx, id, model.WrapperPatch{Name: ptr("Renamed"), Price: ptr(120.0)})
			require.NoError(t, err)
			assert.True(t, matched)

			got, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, 120.0, got.Price)
			assert.Equal(t, "/MC001.jpg", got.ImageURL, "untouched fields survive")
			assert.False(t, got.UpdatedAt.Before(w.UpdatedAt))

			matched, err = b.Wrappers().UpdateOne(ctx, "missing", model.WrapperPatch{Name: ptr("x")})
			require.NoError(t, err)
			assert.False(t, matched)

			deleted, err := b.Wrappers().DeleteOne(ctx, id)
			require.NoError(t, err)
			assert.True(t, deleted)
			deleted, err = b.Wrappers().DeleteOne(ctx, id)
			require.NoError(t, err)
			assert.False(t, deleted)

			n, err := b.Wrappers().Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestBackends_ToggleLike(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := b.Wrappers().InsertOne(ctx, wrapperAt("MC001", time.Time{}))
			require.NoError(t, err)

			likes, liked, err := b.Wrappers().ToggleLike(ctx, id, "u1")
			require.NoError(t, err)
			assert.Equal(t, 1, likes)
			assert.True(t, liked)

			likes, liked, err = b.Wrappers().ToggleLike(ctx, id, "u1")
			require.NoError(t, err)
			assert.Equal(t, 0, likes)
			assert.False(t, liked)

			likes, liked, err = b.Wrappers().ToggleLike(ctx, id, "u2")
			require.NoError(t, err)
			assert.Equal(t, 1, likes)
			assert.True(t, liked)

			got, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
			require.NoError(t, err)
			assert.Equal(t, []string{"u2"}, got.LikedBy)

			_, _, err = b.Wrappers().ToggleLike(ctx, "missing", "u1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// Одновременные лайки разных пользователей не теряются
func TestBackends_ToggleLikeConcurrent(t *testing.T) {
	const users = 20
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := b.Wrappers().InsertOne(ctx, wrapperAt("MC001", time.Time{}))
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, users)
			for i := range users {
				wg.Add(1)
				go func(u string) {
					defer wg.Done()
					if _, _, err := b.Wrappers().ToggleLike(ctx, id, u); err != nil {
						errs <- err
					}
				}(fmt.Sprintf("user-%d", i))
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
			require.NoError(t, err)
			assert.Equal(t, users, got.Likes)
			assert.Len(t, got.LikedBy, users)
		})
	}
}

func TestBackends_Admins(t *testing.T) {
	for name, b := range newTestBackends(t, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := b.Admins().InsertOne(ctx, &model.Admin{Username: "admin", Password: "hash"})
			require.NoError(t, err)

			a, err := b.Admins().FindOne(ctx, Filter{Username: "admin"})
			require.NoError(t, err)
			assert.Equal(t, "hash", a.Password)

			_, err = b.Admins().FindOne(ctx, Filter{Username: "ghost"})
			assert.ErrorIs(t, err, ErrNotFound)

			// у администраторов нет modelNumber
			none, err := b.Admins().FindAll(ctx, Filter{ModelNumber: "MC001"}, SortNone)
			require.NoError(t, err)
			assert.Empty(t, none)

			matched, err := b.Admins().UpdateOne(ctx, a.ID, model.AdminPatch{Password: ptr("new-hash")})
			require.NoError(t, err)
			assert.True(t, matched)
			a, err = b.Admins().FindOne(ctx, Filter{ID: a.ID})
			require.NoError(t, err)
			assert.Equal(t, "new-hash", a.Password)
		})
	}
}

// Снимок загружается лениво, один раз, при первом обращении
func TestBackends_LazySeeding(t *testing.T) {
	calls := 0
	load := func() (*Snapshot, error) {
		calls++
		return &Snapshot{
			Wrappers: []model.Wrapper{*wrapperAt("MC001", time.Time{}), *wrapperAt("MC002", time.Time{})},
			Admins:   []model.Admin{{Username: "admin", Password: "hash"}},
		}, nil
	}
	for name, b := range newTestBackends(t, load) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			before := calls
			n, err := b.Wrappers().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
			an, err := b.Admins().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), an)

			require.NoError(t, b.HealthCheck(ctx))
			assert.Equal(t, before+1, calls, "loader runs once per backend")
		})
	}
}

func TestBackends_SeedErrorFailsHealthCheck(t *testing.T) {
	load := func() (*Snapshot, error) { return nil, fmt.Errorf("broken export") }
	for name, b := range newTestBackends(t, load) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, b.HealthCheck(context.Background()))
		})
	}
}

// Снимок не перезаписывает уже наполненную базу
func TestSnapshotBackend_SkipsSeedWhenTablesNotEmpty(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB("")
	require.NoError(t, err)

	first := NewSnapshotBackend(db, nil)
	_, err = first.Wrappers().InsertOne(ctx, wrapperAt("MC042", time.Time{}))
	require.NoError(t, err)

	second := NewSnapshotBackend(db, staticLoader(&Snapshot{Wrappers: []model.Wrapper{*wrapperAt("MC001", time.Time{})}}))
	all, err := second.Wrappers().FindAll(ctx, Filter{}, SortNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"MC042"}, modelNumbers(all))
	require.NoError(t, second.Close(ctx))
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(nil)
	id, err := b.Wrappers().InsertOne(ctx, wrapperAt("MC001", time.Time{}))
	require.NoError(t, err)

	got, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
	require.NoError(t, err)
	got.Name = "mutated"
	got.LikedBy = append(got.LikedBy, "intruder")

	again, err := b.Wrappers().FindOne(ctx, Filter{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Wrapper MC001", again.Name)
	assert.Empty(t, again.LikedBy)
	assert.Equal(t, "mock_1", id)
}

func modelNumbers(ws []model.Wrapper) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ModelNumber)
	}
	return out
}
