package service

import (
	"ChocoWrappers/internal/repo"
	"context"
	"time"
)

// staticProvider всегда отдаёт одно и то же хранилище
type staticProvider struct {
	b   repo.Backend
	err error
}

func (p staticProvider) Resolve(context.Context) (repo.Backend, error) {
	return p.b, p.err
}

func (p staticProvider) Failover(context.Context, repo.Backend) (repo.Backend, error) {
	return nil, repo.ErrNoBackend
}

var ist = time.FixedZone("IST", 5*3600+1800)

// fixedClock возвращает часы, показывающие указанное местное время в IST
func fixedClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 8, 20, hour, minute, 0, 0, ist)
	}
}

func newMemoryCatalog() (*CatalogService, *repo.MemoryBackend) {
	b := repo.NewMemoryBackend(nil)
	return NewCatalogService(staticProvider{b: b}, ist, nil), b
}

func ptr[T any](v T) *T { return &v }
