package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// BackendMemory — имя аварийного хранилища в памяти процесса.
const BackendMemory = "memory"

type patcher[T any] interface {
	Apply(doc *T)
}

// memCollection — коллекция в памяти. Все документы отдаются копиями.
type memCollection[T any, PT document[T], P patcher[T]] struct {
	mu     sync.RWMutex
	docs   []T
	ready  func()
	nextID func() string
	now    func() time.Time
}

func (c *memCollection[T, PT, P]) FindAll(_ context.Context, f Filter, sortDescBy string) ([]T, error) {
	c.ready()
	c.mu.RLock()
	out := make([]T, 0, len(c.docs))
	for i := range c.docs {
		if matches[T, PT](&c.docs[i], f) {
			out = append(out, *PT(&c.docs[i]).Clone())
		}
	}
	c.mu.RUnlock()
	sortDesc[T, PT](out, sortDescBy)
	return out, nil
}

func (c *memCollection[T, PT, P]) FindOne(_ context.Context, f Filter) (*T, error) {
	c.ready()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.docs {
		if matches[T, PT](&c.docs[i], f) {
			return PT(&c.docs[i]).Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memCollection[T, PT, P]) InsertOne(_ context.Context, doc *T) (string, error) {
	c.ready()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkFreeLocked(doc); err != nil {
		return "", err
	}
	return c.insertLocked(doc), nil
}

// checkFreeLocked проверяет, что id документов (если заданы) ещё не заняты.
func (c *memCollection[T, PT, P]) checkFreeLocked(docs ...*T) error {
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		id := PT(d).DocID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup || c.indexLocked(id) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *memCollection[T, PT, P]) insertLocked(doc *T) string {
	stored := PT(doc).Clone()
	if PT(stored).DocID() == "" {
		PT(stored).SetDocID(c.nextID())
	}
	PT(stored).StampCreated(c.now())
	c.docs = append(c.docs, *stored)
	// вызывающий видит присвоенные id и отметки времени
	*doc = *PT(stored).Clone()
	return PT(stored).DocID()
}

func (c *memCollection[T, PT, P]) InsertMany(_ context.Context, docs []*T) ([]string, error) {
	c.ready()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkFreeLocked(docs...); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, c.insertLocked(d))
	}
	return ids, nil
}

func (c *memCollection[T, PT, P]) UpdateOne(_ context.Context, id string, patch P) (bool, error) {
	c.ready()
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	patch.Apply(&c.docs[i])
	PT(&c.docs[i]).StampUpdated(c.now())
	return true, nil
}

func (c *memCollection[T, PT, P]) DeleteOne(_ context.Context, id string) (bool, error) {
	c.ready()
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return true, nil
}

func (c *memCollection[T, PT, P]) Count(_ context.Context) (int64, error) {
	c.ready()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (c *memCollection[T, PT, P]) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.docs {
		if PT(&c.docs[i]).DocID() == id {
			return i
		}
	}
	return -1
}

type memWrappers struct {
	*memCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]
}

func (w memWrappers) ToggleLike(_ context.Context, id, user string) (int, bool, error) {
	w.ready()
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexLocked(id)
	if i < 0 {
		return 0, false, ErrNotFound
	}
	doc := &w.docs[i]
	liked := doc.ToggleLike(user)
	doc.StampUpdated(w.now())
	return doc.Likes, liked, nil
}

type memAdmins struct {
	*memCollection[model.Admin, *model.Admin, model.AdminPatch]
}

// MemoryBackend — аварийное хранилище: данные живут только в памяти процесса.
// Наполняется из снимка один раз при первом обращении.
type MemoryBackend struct {
	once    sync.Once
	load    SnapshotLoader
	initErr error
	seq     atomic.Uint64

	wrappers memWrappers
	admins   memAdmins
}

// NewMemoryBackend создаёт хранилище; load вызывается лениво (nil — пустое хранилище).
func NewMemoryBackend(load SnapshotLoader) *MemoryBackend {
	b := &MemoryBackend{load: load}
	now := func() time.Time { return time.Now().UTC() }
	b.wrappers = memWrappers{&memCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]{
		ready: b.init, nextID: b.nextID, now: now,
	}}
	b.admins = memAdmins{&memCollection[model.Admin, *model.Admin, model.AdminPatch]{
		ready: b.init, nextID: b.nextID, now: now,
	}}
	return b
}

func (b *MemoryBackend) nextID() string {
	return fmt.Sprintf("mock_%d", b.seq.Add(1))
}

func (b *MemoryBackend) init() {
	b.once.Do(func() {
		if b.load == nil {
			return
		}
		snap, err := b.load()
		if err != nil {
			b.initErr = fmt.Errorf("load snapshot: %w", err)
			return
		}
		// напрямую, минуя ready(): мы уже внутри once.Do
		for i := range snap.Wrappers {
			b.wrappers.insertLocked(&snap.Wrappers[i])
		}
		for i := range snap.Admins {
			b.admins.insertLocked(&snap.Admins[i])
		}
	})
}

func (b *MemoryBackend) Name() string           { return BackendMemory }
func (b *MemoryBackend) Wrappers() WrapperStore { return b.wrappers }
func (b *MemoryBackend) Admins() AdminStore     { return b.admins }

func (b *MemoryBackend) HealthCheck(_ context.Context) error {
	b.init()
	return b.initErr
}

func (b *MemoryBackend) Close(_ context.Context) error { return nil }
