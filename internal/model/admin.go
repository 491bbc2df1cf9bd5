package model

import "time"

// Admin — учётная запись администратора. Password хранит bcrypt-хеш.
type Admin struct {
	ID        string    `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	Username  string    `json:"username" bson:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"password" bson:"password" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty"`
}

func (a *Admin) DocID() string         { return a.ID }
func (a *Admin) SetDocID(id string)    { a.ID = id }
func (a *Admin) Created() time.Time    { return a.CreatedAt }
func (a *Admin) Scheduled() *time.Time { return nil }
func (a *Admin) Keys() Keys            { return Keys{ID: a.ID, Username: a.Username} }

func (a *Admin) StampCreated(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
}

func (a *Admin) StampUpdated(now time.Time) { a.UpdatedAt = now }

func (a *Admin) Clone() *Admin {
	c := *a
	return &c
}

// AdminPatch — частичное обновление администратора.
type AdminPatch struct {
	Password *string
}

func (p AdminPatch) Apply(a *Admin) {
	if p.Password != nil {
		a.Password = *p.Password
	}
}

func (p AdminPatch) Fields() map[string]any {
	f := map[string]any{}
	if p.Password != nil {
		f["password"] = *p.Password
	}
	return f
}
