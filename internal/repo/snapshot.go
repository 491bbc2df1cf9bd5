package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// BackendSnapshot — имя резервного хранилища на снимке данных.
const BackendSnapshot = "snapshot"

// gormCollection — коллекция поверх таблицы GORM.
// Поисковые ключи фильтруются в SQL, scheduledDate и сортировка — в Go,
// чтобы результат совпадал с остальными хранилищами независимо от диалекта.
type gormCollection[T any, PT document[T], P patcher[T]] struct {
	b *SnapshotBackend
	// columns сопоставляет поля Filter колонкам таблицы; отсутствующий ключ — поля нет в таблице.
	columns map[string]string
}

func (c *gormCollection[T, PT, P]) scope(ctx context.Context, f Filter) (*gorm.DB, bool) {
	q := c.b.db.WithContext(ctx).Model(new(T))
	for key, val := range map[string]string{"id": f.ID, "username": f.Username, "modelNumber": f.ModelNumber} {
		if val == "" {
			continue
		}
		col, ok := c.columns[key]
		if !ok {
			return nil, false
		}
		q = q.Where(col+" = ?", val)
	}
	return q, true
}

func (c *gormCollection[T, PT, P]) FindAll(ctx context.Context, f Filter, sortDescBy string) ([]T, error) {
	if err := c.b.init(); err != nil {
		return nil, err
	}
	q, ok := c.scope(ctx, f)
	if !ok {
		return []T{}, nil
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i := range rows {
		if matches[T, PT](&rows[i], Filter{VisibleAt: f.VisibleAt}) {
			out = append(out, rows[i])
		}
	}
	sortDesc[T, PT](out, sortDescBy)
	return out, nil
}

func (c *gormCollection[T, PT, P]) FindOne(ctx context.Context, f Filter) (*T, error) {
	docs, err := c.FindAll(ctx, f, SortNone)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (c *gormCollection[T, PT, P]) InsertOne(ctx context.Context, doc *T) (string, error) {
	if err := c.b.init(); err != nil {
		return "", err
	}
	return c.create(c.b.db.WithContext(ctx), doc)
}

func (c *gormCollection[T, PT, P]) create(tx *gorm.DB, doc *T) (string, error) {
	stored := PT(doc).Clone()
	if PT(stored).DocID() == "" {
		PT(stored).SetDocID("static_" + uuid.NewString())
	}
	PT(stored).StampCreated(time.Now().UTC())
	if err := tx.Create(stored).Error; err != nil {
		return "", snapshotErr(err, PT(stored).DocID())
	}
	*doc = *stored
	return PT(stored).DocID(), nil
}

// snapshotErr приводит нарушение первичного ключа к ErrDuplicateID.
// PostgreSQL переводит GORM (TranslateError), SQLite — по коду ошибки драйвера.
func snapshotErr(err error, id string) error {
	var serr *sqlite.Error
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return err
}

func (c *gormCollection[T, PT, P]) InsertMany(ctx context.Context, docs []*T) ([]string, error) {
	if err := c.b.init(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	err := c.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range docs {
			id, err := c.create(tx, d)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *gormCollection[T, PT, P]) UpdateOne(ctx context.Context, id string, patch P) (bool, error) {
	if err := c.b.init(); err != nil {
		return false, err
	}
	matched := false
	err := c.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc := new(T)
		if err := c.b.lock(tx).First(doc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		patch.Apply(doc)
		PT(doc).StampUpdated(time.Now().UTC())
		matched = true
		return tx.Save(doc).Error
	})
	return matched, err
}

func (c *gormCollection[T, PT, P]) DeleteOne(ctx context.Context, id string) (bool, error) {
	if err := c.b.init(); err != nil {
		return false, err
	}
	tx := c.b.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (c *gormCollection[T, PT, P]) Count(ctx context.Context) (int64, error) {
	if err := c.b.init(); err != nil {
		return 0, err
	}
	var n int64
	err := c.b.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

type gormWrappers struct {
	*gormCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]
}

// ToggleLike читает и пишет обёртку в одной транзакции (на PostgreSQL — с блокировкой строки).
func (w gormWrappers) ToggleLike(ctx context.Context, id, user string) (int, bool, error) {
	if err := w.b.init(); err != nil {
		return 0, false, err
	}
	var (
		likes int
		liked bool
	)
	err := w.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc model.Wrapper
		if err := w.b.lock(tx).First(&doc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		liked = doc.ToggleLike(user)
		doc.StampUpdated(time.Now().UTC())
		likes = doc.Likes
		return tx.Save(&doc).Error
	})
	if err != nil {
		return 0, false, err
	}
	return likes, liked, nil
}

type gormAdmins struct {
	*gormCollection[model.Admin, *model.Admin, model.AdminPatch]
}

// SnapshotBackend — резервное хранилище: снимок коллекций в реляционной базе через GORM.
// Если таблицы пусты, при первом обращении наполняются из загрузчика снимка.
type SnapshotBackend struct {
	db      *gorm.DB
	load    SnapshotLoader
	once    sync.Once
	initErr error

	wrappers gormWrappers
	admins   gormAdmins
}

// NewSnapshotBackend создаёт хранилище поверх уже мигрированной базы (см. InitDB).
func NewSnapshotBackend(db *gorm.DB, load SnapshotLoader) *SnapshotBackend {
	b := &SnapshotBackend{db: db, load: load}
	b.wrappers = gormWrappers{&gormCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]{
		b:       b,
		columns: map[string]string{"id": "id", "modelNumber": "model_number"},
	}}
	b.admins = gormAdmins{&gormCollection[model.Admin, *model.Admin, model.AdminPatch]{
		b:       b,
		columns: map[string]string{"id": "id", "username": "username"},
	}}
	return b
}

// OpenSnapshotBackend открывает базу по dsn и создаёт хранилище.
func OpenSnapshotBackend(dsn string, load SnapshotLoader) (*SnapshotBackend, error) {
	db, err := InitDB(dsn)
	if err != nil {
		return nil, err
	}
	return NewSnapshotBackend(db, load), nil
}

func (b *SnapshotBackend) init() error {
	b.once.Do(func() {
		if b.load == nil {
			return
		}
		var wn, an int64
		if err := b.db.Model(&model.Wrapper{}).Count(&wn).Error; err != nil {
			b.initErr = err
			return
		}
		if err := b.db.Model(&model.Admin{}).Count(&an).Error; err != nil {
			b.initErr = err
			return
		}
		if wn > 0 || an > 0 {
			return
		}
		snap, err := b.load()
		if err != nil {
			b.initErr = fmt.Errorf("load snapshot: %w", err)
			return
		}
		b.initErr = b.db.Transaction(func(tx *gorm.DB) error {
			for i := range snap.Wrappers {
				if _, err := b.wrappers.create(tx, &snap.Wrappers[i]); err != nil {
					return err
				}
			}
			for i := range snap.Admins {
				if _, err := b.admins.create(tx, &snap.Admins[i]); err != nil {
					return err
				}
			}
			return nil
		})
	})
	return b.initErr
}

// lock добавляет SELECT ... FOR UPDATE там, где диалект его поддерживает.
func (b *SnapshotBackend) lock(tx *gorm.DB) *gorm.DB {
	if b.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (b *SnapshotBackend) Name() string           { return BackendSnapshot }
func (b *SnapshotBackend) Wrappers() WrapperStore { return b.wrappers }
func (b *SnapshotBackend) Admins() AdminStore     { return b.admins }

func (b *SnapshotBackend) HealthCheck(ctx context.Context) error {
	if err := b.init(); err != nil {
		return err
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *SnapshotBackend) Close(_ context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
