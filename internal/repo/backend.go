package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"errors"
	"time"
)

// Имена коллекций, общие для всех хранилищ.
const (
	CollectionWrappers = "wrappers"
	CollectionAdmins   = "admins"
)

// Ключи сортировки FindAll (по убыванию).
const (
	SortNone        = ""
	SortCreatedAt   = "createdAt"
	SortModelNumber = "modelNumber"
)

var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("record not found")
	// ErrConnection — живое хранилище недоступно (сеть, таймаут, авторизация).
	ErrConnection = errors.New("storage connection failed")
	// ErrDuplicateID — документ с таким id уже есть в коллекции.
	ErrDuplicateID = errors.New("duplicate document id")
	// ErrNoBackend — ни одно хранилище из цепочки не прошло проверку.
	ErrNoBackend = errors.New("no storage backend available")
)

// Filter — условия поиска на точное совпадение; заданные поля объединяются через AND.
type Filter struct {
	ID          string
	Username    string
	ModelNumber string
	// VisibleAt оставляет только документы без scheduledDate или с scheduledDate <= VisibleAt.
	VisibleAt *time.Time
}

// Collection — контракт коллекции документов T с частичными обновлениями P.
type Collection[T any, P any] interface {
	// FindAll возвращает документы по фильтру, отсортированные по убыванию sortDescBy.
	FindAll(ctx context.Context, f Filter, sortDescBy string) ([]T, error)
	// FindOne возвращает первый подходящий документ или ErrNotFound.
	FindOne(ctx context.Context, f Filter) (*T, error)
	// InsertOne сохраняет документ, проставляя id и отметки времени, если их нет.
	// Занятый id даёт ErrDuplicateID.
	InsertOne(ctx context.Context, doc *T) (string, error)
	// InsertMany — InsertOne для каждого документа с сохранением порядка.
	InsertMany(ctx context.Context, docs []*T) ([]string, error)
	// UpdateOne применяет patch к документу id и обновляет updatedAt. matched=false, если документа нет.
	UpdateOne(ctx context.Context, id string, patch P) (matched bool, err error)
	// DeleteOne удаляет документ id. deleted=false, если документа нет.
	DeleteOne(ctx context.Context, id string) (deleted bool, err error)
	Count(ctx context.Context) (int64, error)
}

// WrapperStore — коллекция обёрток с атомарным переключением лайка.
type WrapperStore interface {
	Collection[model.Wrapper, model.WrapperPatch]
	// ToggleLike атомарно добавляет user в likedBy (+1) или убирает его (-1).
	// Возвращает итоговое число лайков и состояние; ErrNotFound, если обёртки нет.
	ToggleLike(ctx context.Context, id, user string) (likes int, liked bool, err error)
}

type AdminStore interface {
	Collection[model.Admin, model.AdminPatch]
}

// Backend — хранилище целиком. Реализации взаимозаменяемы для сервисного слоя.
type Backend interface {
	Name() string
	Wrappers() WrapperStore
	Admins() AdminStore
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
