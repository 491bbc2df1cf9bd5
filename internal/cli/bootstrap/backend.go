package bootstrap

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrFallbackWrite — основное хранилище недоступно, а резервное не сохранит данные после выхода.
var ErrFallbackWrite = errors.New("primary storage unavailable, refusing to write into a fallback backend")

// OpenBackend выбирает хранилище по цепочке отката из конфигурации и
// возвращает (backend, cleanup, error). cleanup закрывает соединение.
//
// При write=true команда собирается менять данные: откат допустим только в
// snapshot с постоянным SNAPSHOT_DSN или при явном cfg.AllowFallback.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, write bool) (repo.Backend, func() error, error) {
	chain := repo.Chain(cfg)
	sel := repo.NewSelector(logger, cfg.ConnectTimeout, chain...)
	b, err := sel.Resolve(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	cleanup := func() error { return sel.Shutdown(context.Background()) }

	if write && !writable(cfg, chain, b) {
		_ = cleanup()
		return nil, nil, fmt.Errorf("%w: %s selected instead of %s (use -allow-fallback or a persistent SNAPSHOT_DSN)",
			ErrFallbackWrite, b.Name(), chain[0].Name)
	}
	return b, cleanup, nil
}

func writable(cfg *config.Config, chain []repo.Factory, b repo.Backend) bool {
	switch {
	case b.Name() == chain[0].Name, cfg.AllowFallback:
		return true
	case b.Name() == repo.BackendSnapshot:
		return cfg.PersistentSnapshot()
	default:
		return false
	}
}
