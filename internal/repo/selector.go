package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Factory открывает одно хранилище из цепочки отката.
type Factory struct {
	Name string
	Open func(ctx context.Context) (Backend, error)
}

// Selector выбирает первое работоспособное хранилище из упорядоченной цепочки
// и запоминает его до перезапуска процесса или явного Invalidate.
// Откат односторонний: вернуться на основное хранилище внутри процесса нельзя
// иначе как через Invalidate.
type Selector struct {
	factories []Factory
	timeout   time.Duration
	logger    *zap.SugaredLogger

	mu       sync.Mutex
	resolved Backend
	// индекс фабрики, открывшей resolved
	resolvedAt int
}

// NewSelector создаёт селектор; timeout ограничивает открытие и проверку каждого хранилища.
func NewSelector(logger *zap.SugaredLogger, timeout time.Duration, factories ...Factory) *Selector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Selector{factories: factories, timeout: timeout, logger: logger}
}

// Init выполняет выбор хранилища заранее, при старте процесса.
func (s *Selector) Init(ctx context.Context) error {
	_, err := s.Resolve(ctx)
	return err
}

// Resolve возвращает выбранное хранилище, при первом вызове перебирая цепочку.
func (s *Selector) Resolve(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved != nil {
		return s.resolved, nil
	}
	return s.resolveFromLocked(ctx, s.resolvedAt)
}

// resolveFromLocked перебирает цепочку начиная с фабрики start.
func (s *Selector) resolveFromLocked(ctx context.Context, start int) (Backend, error) {
	var errs []error
	for i := start; i < len(s.factories); i++ {
		f := s.factories[i]
		b, err := s.probe(ctx, f)
		if err != nil {
			s.logger.Warnw("storage backend unavailable, falling back",
				"backend", f.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		s.logger.Infow("storage backend selected", "backend", b.Name())
		s.resolved = b
		s.resolvedAt = i
		return b, nil
	}
	if len(errs) == 0 {
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

// Failover отказывается от хранилища failed, потерявшего соединение, и выбирает
// следующее работоспособное из цепочки после него. К предыдущим хранилищам
// селектор не возвращается. Если выбор уже сменился (failed не текущее),
// возвращается текущее хранилище.
func (s *Selector) Failover(ctx context.Context, failed Backend) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved == nil {
		return s.resolveFromLocked(ctx, s.resolvedAt)
	}
	if s.resolved != failed {
		return s.resolved, nil
	}

	s.logger.Warnw("storage backend lost connection, failing over", "backend", failed.Name())
	s.resolved = nil
	if err := failed.Close(context.Background()); err != nil {
		s.logger.Warnw("failed to close lost backend", "backend", failed.Name(), "error", err)
	}
	// позиция в цепочке сохраняется, даже если дальше ничего не нашлось
	s.resolvedAt++
	return s.resolveFromLocked(ctx, s.resolvedAt)
}

func (s *Selector) probe(ctx context.Context, f Factory) (Backend, error) {
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := f.Open(pctx)
	if err != nil {
		return nil, err
	}
	if err := b.HealthCheck(pctx); err != nil {
		if cerr := b.Close(context.Background()); cerr != nil {
			s.logger.Warnw("failed to close rejected backend", "backend", f.Name, "error", cerr)
		}
		return nil, err
	}
	return b, nil
}

// Current возвращает выбранное хранилище без попытки выбора (nil, если выбора ещё не было).
func (s *Selector) Current() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Invalidate сбрасывает выбор: следующий Resolve снова пройдёт цепочку с начала,
// в том числе после Failover.
func (s *Selector) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	b := s.resolved
	s.resolved = nil
	s.resolvedAt = 0
	s.mu.Unlock()
	if b == nil {
		return nil
	}
	s.logger.Infow("storage backend invalidated", "backend", b.Name())
	return b.Close(ctx)
}

// Shutdown закрывает выбранное хранилище.
func (s *Selector) Shutdown(ctx context.Context) error {
	return s.Invalidate(ctx)
}

var (
	sharedMu        sync.Mutex
	sharedSelectors = map[string]*Selector{}
)

// SharedSelector возвращает селектор, общий для процесса, по известному ключу:
// build вызывается только при первом обращении. Используется в режиме разработки,
// где корневой объект может пересоздаваться, а подключение должно переживать это.
func SharedSelector(key string, build func() *Selector) *Selector {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if s, ok := sharedSelectors[key]; ok {
		return s
	}
	s := build()
	sharedSelectors[key] = s
	return s
}
