package service

import (
	"ChocoWrappers/internal/model"
	"ChocoWrappers/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// anonymousUser — идентификатор лайка, если не удалось определить ни клиента, ни адрес.
const anonymousUser = "anonymous"

// BackendProvider отдаёт текущее хранилище (см. repo.Selector).
type BackendProvider interface {
	Resolve(ctx context.Context) (repo.Backend, error)
	// Failover заменяет хранилище, потерявшее соединение, следующим из цепочки.
	Failover(ctx context.Context, failed repo.Backend) (repo.Backend, error)
}

// withBackend выполняет op на текущем хранилище. Если хранилище потеряло
// соединение (repo.ErrConnection), op один раз повторяется на следующем.
func withBackend[R any](ctx context.Context, p BackendProvider, logger *zap.SugaredLogger, op func(b repo.Backend) (R, error)) (R, error) {
	var zero R
	b, err := p.Resolve(ctx)
	if err != nil {
		return zero, err
	}
	res, err := op(b)
	if !errors.Is(err, repo.ErrConnection) {
		return res, err
	}
	logger.Warnw("storage connection lost, retrying on fallback", "backend", b.Name(), "error", err)
	next, ferr := p.Failover(ctx, b)
	if ferr != nil {
		return zero, ferr
	}
	return op(next)
}

// CatalogService — бизнес-логика каталога обёрток.
type CatalogService struct {
	backends BackendProvider
	loc      *time.Location
	now      func() time.Time
	logger   *zap.SugaredLogger
}

// NewCatalogService создаёт сервис; loc — часовой пояс ночного окна (nil — UTC).
func NewCatalogService(backends BackendProvider, loc *time.Location, logger *zap.SugaredLogger) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CatalogService{backends: backends, loc: loc, now: time.Now, logger: logger}
}

// SetClock подменяет источник текущего времени.
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// PricedWrapper — обёртка с вычисленной на момент чтения ценой.
type PricedWrapper struct {
	model.Wrapper
	CurrentPrice      float64 `json:"currentPrice"`
	IsLateNightActive bool    `json:"isLateNightActive"`
}

// Listing — результат List.
type Listing struct {
	Wrappers    []PricedWrapper
	IsLateNight bool
}

// List возвращает обёртки, новые первыми. Без includeScheduled скрываются
// обёртки с scheduledDate в будущем; флаг isVisible на выборку не влияет.
func (s *CatalogService) List(ctx context.Context, includeScheduled bool) (*Listing, error) {
	now := s.now()
	var f repo.Filter
	if !includeScheduled {
		f.VisibleAt = &now
	}
	docs, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) ([]model.Wrapper, error) {
		return b.Wrappers().FindAll(ctx, f, repo.SortCreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("list wrappers: %w", err)
	}

	lateNight := IsLateNight(now, s.loc)
	out := make([]PricedWrapper, 0, len(docs))
	for i := range docs {
		w := &docs[i]
		out = append(out, PricedWrapper{
			Wrapper:           *w,
			CurrentPrice:      EffectivePrice(w, now, s.loc),
			IsLateNightActive: lateNight && w.IsLateNightSpecial,
		})
	}
	return &Listing{Wrappers: out, IsLateNight: lateNight}, nil
}

// CreateWrapperInput — данные формы загрузки.
type CreateWrapperInput struct {
	Name               string `validate:"required"`
	Description        string
	Price              float64 `validate:"required,gt=0"`
	ImageURL           string  `validate:"required"`
	IsLateNightSpecial bool
	LateNightPrice     *float64 `validate:"omitempty,gt=0"`
	ScheduledDate      *time.Time
	Tags               []string
}

// Create сохраняет новую обёртку с очередным номером модели.
// Номер вычисляется в момент вставки; одновременные Create могут получить один номер.
func (s *CatalogService) Create(ctx context.Context, in CreateWrapperInput) (*model.Wrapper, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validateInput(in, "name, price, and image are required"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	w := &model.Wrapper{
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		ImageURL:           in.ImageURL,
		Likes:              0,
		LikedBy:            []string{},
		IsLateNightSpecial: in.IsLateNightSpecial,
		LateNightPrice:     in.LateNightPrice,
		IsVisible:          true,
		Tags:               in.Tags,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.ScheduledDate != nil {
		sd := in.ScheduledDate.UTC()
		w.ScheduledDate = &sd
	}

	backend, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (string, error) {
		next, _, err := s.nextModelNumber(ctx, b)
		if err != nil {
			return "", err
		}
		w.ModelNumber = next
		if _, err := b.Wrappers().InsertOne(ctx, w); err != nil {
			return "", fmt.Errorf("insert wrapper: %w", err)
		}
		return b.Name(), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("wrapper created", "id", w.ID, "model_number", w.ModelNumber, "backend", backend)
	return w, nil
}

// UpdateWrapperInput — редактирование из админки.
type UpdateWrapperInput struct {
	ID          string   `validate:"required"`
	Name        string   `validate:"required"`
	Price       *float64 `validate:"required,gt=0"`
	Description *string
}

// Update меняет название, цену и описание (отсутствующее описание становится пустым).
func (s *CatalogService) Update(ctx context.Context, in UpdateWrapperInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in, "ID, name, and price are required"); err != nil {
		return err
	}
	desc := ""
	if in.Description != nil {
		desc = *in.Description
	}
	matched, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (bool, error) {
		return b.Wrappers().UpdateOne(ctx, in.ID, model.WrapperPatch{
			Name:        &in.Name,
			Price:       in.Price,
			Description: &desc,
		})
	})
	if err != nil {
		return fmt.Errorf("update wrapper: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет обёртку. Номер модели повторно не используется.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Message: "wrapper ID is required"}
	}
	var backend string
	deleted, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (bool, error) {
		backend = b.Name()
		return b.Wrappers().DeleteOne(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete wrapper: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Infow("wrapper deleted", "id", id, "backend", backend)
	return nil
}

// LikeResult — состояние после переключения лайка.
type LikeResult struct {
	Likes int
	Liked bool
}

// ToggleLike ставит или снимает лайк пользователя userID (пустой — anonymous).
func (s *CatalogService) ToggleLike(ctx context.Context, wrapperID, userID string) (*LikeResult, error) {
	if strings.TrimSpace(wrapperID) == "" {
		return nil, &ValidationError{Message: "wrapper ID is required"}
	}
	if userID = strings.TrimSpace(userID); userID == "" {
		userID = anonymousUser
	}
	res, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (*LikeResult, error) {
		likes, liked, err := b.Wrappers().ToggleLike(ctx, wrapperID, userID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{Likes: likes, Liked: liked}, nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return res, nil
}

// NextModelNumber — предварительный просмотр номера для формы загрузки; номер не резервируется.
func (s *CatalogService) NextModelNumber(ctx context.Context) (string, int, error) {
	type preview struct {
		next  string
		count int
	}
	p, err := withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (preview, error) {
		next, count, err := s.nextModelNumber(ctx, b)
		return preview{next: next, count: count}, err
	})
	if err != nil {
		return "", 0, err
	}
	return p.next, p.count, nil
}

func (s *CatalogService) nextModelNumber(ctx context.Context, b repo.Backend) (string, int, error) {
	docs, err := b.Wrappers().FindAll(ctx, repo.Filter{}, repo.SortModelNumber)
	if err != nil {
		return "", 0, fmt.Errorf("scan model numbers: %w", err)
	}
	existing := make([]string, 0, len(docs))
	for _, d := range docs {
		existing = append(existing, d.ModelNumber)
	}
	return NextModelNumber(existing), len(docs), nil
}

// Stats — сведения о хранилище для диагностики.
type Stats struct {
	Backend  string
	Wrappers int64
	Admins   int64
}

func (s *CatalogService) Stats(ctx context.Context) (*Stats, error) {
	return withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (*Stats, error) {
		wn, err := b.Wrappers().Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count wrappers: %w", err)
		}
		an, err := b.Admins().Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count admins: %w", err)
		}
		return &Stats{Backend: b.Name(), Wrappers: wn, Admins: an}, nil
	})
}
