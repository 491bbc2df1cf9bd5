package model

import (
	"slices"
	"time"
)

// Wrapper — позиция каталога (дизайн обёртки).
// Теги json повторяют формат экспорта MongoDB, bson — документ в коллекции, gorm — строка snapshot-таблицы.
type Wrapper struct {
	ID          string  `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	ModelNumber string  `json:"modelNumber" bson:"modelNumber" gorm:"index"`
	Name        string  `json:"name" bson:"name" gorm:"not null"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price" gorm:"not null"`
	ImageURL    string  `json:"imageUrl" bson:"imageUrl" gorm:"not null"`

	IsLateNightSpecial bool     `json:"isLateNightSpecial" bson:"isLateNightSpecial"`
	LateNightPrice     *float64 `json:"lateNightPrice,omitempty" bson:"lateNightPrice,omitempty"`

	Likes   int      `json:"likes" bson:"likes"`
	LikedBy []string `json:"likedBy" bson:"likedBy" gorm:"serializer:json"`

	IsVisible     bool       `json:"isVisible" bson:"isVisible"`
	IsActive      *bool      `json:"isActive,omitempty" bson:"isActive,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty"`
	Tags          []string   `json:"tags,omitempty" bson:"tags,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (w *Wrapper) DocID() string         { return w.ID }
func (w *Wrapper) SetDocID(id string)    { w.ID = id }
func (w *Wrapper) Created() time.Time    { return w.CreatedAt }
func (w *Wrapper) Scheduled() *time.Time { return w.ScheduledDate }

// Keys возвращает значения, по которым возможен поиск на точное совпадение.
func (w *Wrapper) Keys() Keys {
	return Keys{ID: w.ID, ModelNumber: w.ModelNumber}
}

// StampCreated проставляет отметки времени, если они не заданы.
func (w *Wrapper) StampCreated(now time.Time) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	if w.LikedBy == nil {
		w.LikedBy = []string{}
	}
}

func (w *Wrapper) StampUpdated(now time.Time) { w.UpdatedAt = now }

// Clone возвращает глубокую копию (срезы не разделяются).
func (w *Wrapper) Clone() *Wrapper {
	c := *w
	c.LikedBy = slices.Clone(w.LikedBy)
	c.Tags = slices.Clone(w.Tags)
	if w.LateNightPrice != nil {
		v := *w.LateNightPrice
		c.LateNightPrice = &v
	}
	if w.IsActive != nil {
		v := *w.IsActive
		c.IsActive = &v
	}
	if w.ScheduledDate != nil {
		v := *w.ScheduledDate
		c.ScheduledDate = &v
	}
	return &c
}

// HasLiked сообщает, есть ли пользователь в likedBy.
func (w *Wrapper) HasLiked(user string) bool {
	return slices.Contains(w.LikedBy, user)
}

// ToggleLike переключает отметку пользователя и возвращает новое состояние.
// Используется хранилищами, у которых нет собственного атомарного примитива.
func (w *Wrapper) ToggleLike(user string) (liked bool) {
	if i := slices.Index(w.LikedBy, user); i >= 0 {
		w.LikedBy = slices.Delete(w.LikedBy, i, i+1)
		if w.Likes > 0 {
			w.Likes--
		}
		return false
	}
	w.LikedBy = append(w.LikedBy, user)
	w.Likes++
	return true
}

// WrapperPatch — частичное обновление: применяются только заданные поля.
type WrapperPatch struct {
	Name               *string
	Description        *string
	Price              *float64
	ImageURL           *string
	IsLateNightSpecial *bool
	LateNightPrice     *float64
	ScheduledDate      *time.Time
	IsVisible          *bool
	Tags               []string
}

func (p WrapperPatch) Apply(w *Wrapper) {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.Price != nil {
		w.Price = *p.Price
	}
	if p.ImageURL != nil {
		w.ImageURL = *p.ImageURL
	}
	if p.IsLateNightSpecial != nil {
		w.IsLateNightSpecial = *p.IsLateNightSpecial
	}
	if p.LateNightPrice != nil {
		v := *p.LateNightPrice
		w.LateNightPrice = &v
	}
	if p.ScheduledDate != nil {
		v := *p.ScheduledDate
		w.ScheduledDate = &v
	}
	if p.IsVisible != nil {
		w.IsVisible = *p.IsVisible
	}
	if p.Tags != nil {
		w.Tags = slices.Clone(p.Tags)
	}
}

// Fields возвращает заданные поля с именами полей документа.
func (p WrapperPatch) Fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	if p.Price != nil {
		f["price"] = *p.Price
	}
	if p.ImageURL != nil {
		f["imageUrl"] = *p.ImageURL
	}
	if p.IsLateNightSpecial != nil {
		f["isLateNightSpecial"] = *p.IsLateNightSpecial
	}
	if p.LateNightPrice != nil {
		f["lateNightPrice"] = *p.LateNightPrice
	}
	if p.ScheduledDate != nil {
		f["scheduledDate"] = *p.ScheduledDate
	}
	if p.IsVisible != nil {
		f["isVisible"] = *p.IsVisible
	}
	if p.Tags != nil {
		f["tags"] = p.Tags
	}
	return f
}
