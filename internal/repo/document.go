package repo

import (
	"ChocoWrappers/internal/model"
	"sort"
	"time"
)

// document — общий набор методов model.Wrapper и model.Admin,
// нужный хранилищам, которые держат документы в памяти процесса.
type document[T any] interface {
	*T
	DocID() string
	SetDocID(id string)
	Keys() model.Keys
	Created() time.Time
	Scheduled() *time.Time
	StampCreated(now time.Time)
	StampUpdated(now time.Time)
	Clone() *T
}

// matches проверяет документ на соответствие фильтру.
func matches[T any, PT document[T]](doc PT, f Filter) bool {
	k := doc.Keys()
	if f.ID != "" && k.ID != f.ID {
		return false
	}
	if f.Username != "" && k.Username != f.Username {
		return false
	}
	if f.ModelNumber != "" && k.ModelNumber != f.ModelNumber {
		return false
	}
	if f.VisibleAt != nil {
		if s := doc.Scheduled(); s != nil && s.After(*f.VisibleAt) {
			return false
		}
	}
	return true
}

// sortDesc сортирует документы по убыванию ключа; порядок равных сохраняется.
func sortDesc[T any, PT document[T]](docs []T, key string) {
	switch key {
	case SortCreatedAt:
		sort.SliceStable(docs, func(i, j int) bool {
			return PT(&docs[i]).Created().After(PT(&docs[j]).Created())
		})
	case SortModelNumber:
		sort.SliceStable(docs, func(i, j int) bool {
			return PT(&docs[i]).Keys().ModelNumber > PT(&docs[j]).Keys().ModelNumber
		})
	}
}
