package repo

import (
	"ChocoWrappers/internal/config"
	"context"

	"go.uber.org/zap"
)

const sharedSelectorKey = "chocowrappers.storage"

// Chain строит цепочку отката для режима развёртывания из конфигурации:
//   - full:   mongo -> snapshot -> memory
//   - static: snapshot
//   - memory: memory
//
// Snapshot и memory наполняются одним и тем же загрузчиком снимка.
func Chain(cfg *config.Config) []Factory {
	load := FileSnapshot(cfg.SnapshotWrappers, cfg.SnapshotAdmins)

	snapshot := Factory{
		Name: BackendSnapshot,
		Open: func(context.Context) (Backend, error) {
			return OpenSnapshotBackend(cfg.SnapshotDSN, load)
		},
	}
	memory := Factory{
		Name: BackendMemory,
		Open: func(context.Context) (Backend, error) {
			return NewMemoryBackend(load), nil
		},
	}

	switch cfg.DeployMode {
	case config.ModeStatic:
		return []Factory{snapshot}
	case config.ModeMemory:
		return []Factory{memory}
	default:
		mongoF := Factory{
			Name: BackendMongo,
			Open: func(ctx context.Context) (Backend, error) {
				return OpenMongoBackend(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout)
			},
		}
		return []Factory{mongoF, snapshot, memory}
	}
}

// NewSelectorFromConfig создаёт селектор для конфигурации. В режиме разработки
// возвращается общий для процесса экземпляр (см. SharedSelector).
func NewSelectorFromConfig(cfg *config.Config, logger *zap.SugaredLogger) *Selector {
	build := func() *Selector {
		return NewSelector(logger, cfg.ConnectTimeout, Chain(cfg)...)
	}
	if cfg.IsDevelopment() {
		return SharedSelector(sharedSelectorKey, build)
	}
	return build()
}
