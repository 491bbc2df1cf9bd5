package service

import (
	"ChocoWrappers/internal/model"
	"time"
)

// Ночное окно [22:00, 06:00) по местному времени.
const (
	lateNightStartHour = 22
	lateNightEndHour   = 6
)

// IsLateNight сообщает, попадает ли t в ночное окно в часовом поясе loc.
func IsLateNight(t time.Time, loc *time.Location) bool {
	h := t.In(loc).Hour()
	return h >= lateNightStartHour || h < lateNightEndHour
}

// EffectivePrice — цена обёртки в момент t. Не хранится, всегда вычисляется при чтении.
func EffectivePrice(w *model.Wrapper, t time.Time, loc *time.Location) float64 {
	if w.IsLateNightSpecial && w.LateNightPrice != nil && IsLateNight(t, loc) {
		return *w.LateNightPrice
	}
	return w.Price
}
