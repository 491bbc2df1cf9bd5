package handlers

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/service"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxFormMemory = 10 << 20

// допустимые форматы scheduledDate из формы загрузки
var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// WrapperHandler обрабатывает каталог обёрток и лайки.
type WrapperHandler struct {
	Catalog *service.CatalogService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewWrapperHandler создаёт хендлер каталога
func NewWrapperHandler(catalog *service.CatalogService, logger *zap.SugaredLogger, cfg *config.Config) *WrapperHandler {
	return &WrapperHandler{Catalog: catalog, Logger: logger, Config: cfg}
}

// List список обёрток с ценой на текущий момент
func (h *WrapperHandler) List(w http.ResponseWriter, r *http.Request) {
	includeScheduled := r.URL.Query().Get("includeScheduled") == "true"

	listing, err := h.Catalog.List(r.Context(), includeScheduled)
	if err != nil {
		writeError(w, h.Logger, "List", err, "Failed to fetch wrappers")
		return
	}
	writeOK(w, envelope{
		"wrappers":    listing.Wrappers,
		"isLateNight": listing.IsLateNight,
	})
}

// Create загрузка новой обёртки (multipart или urlencoded форма)
func (h *WrapperHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.Logger.Warnw("Create: invalid form", "error", err)
		writeFail(w, http.StatusBadRequest, "invalid form")
		return
	}

	in, err := parseCreateForm(r)
	if err != nil {
		h.Logger.Warnw("Create: invalid form value", "error", err)
		writeError(w, h.Logger, "Create", err, "Failed to create wrapper")
		return
	}

	created, err := h.Catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, "Create", err, "Failed to create wrapper")
		return
	}
	writeOK(w, envelope{
		"message":     "Wrapper created successfully",
		"wrapperId":   created.ID,
		"modelNumber": created.ModelNumber,
	})
}

func parseCreateForm(r *http.Request) (service.CreateWrapperInput, error) {
	in := service.CreateWrapperInput{
		Name:               r.FormValue("name"),
		Description:        r.FormValue("description"),
		ImageURL:           r.FormValue("imageUrl"),
		IsLateNightSpecial: r.FormValue("isLateNightSpecial") == "true",
	}
	// нечисловая цена равносильна отсутствующей
	if p, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64); err == nil {
		in.Price = p
	}
	if v := strings.TrimSpace(r.FormValue("lateNightPrice")); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, &service.ValidationError{Message: "lateNightPrice must be a number"}
		}
		in.LateNightPrice = &p
	}
	if v := strings.TrimSpace(r.FormValue("scheduledDate")); v != "" {
		t, ok := parseSchedule(v)
		if !ok {
			return in, &service.ValidationError{Message: "scheduledDate must be a date"}
		}
		in.ScheduledDate = &t
	}
	for _, raw := range r.Form["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				in.Tags = append(in.Tags, tag)
			}
		}
	}
	return in, nil
}

func parseSchedule(v string) (time.Time, bool) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UpdateRequest — тело PUT /api/wrappers
type UpdateRequest struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// Update редактирование названия, цены и описания
func (h *WrapperHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Update: invalid request body", "error", err)
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.Catalog.Update(r.Context(), service.UpdateWrapperInput{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.Logger, "Update", err, "Failed to update wrapper")
		return
	}
	writeOK(w, envelope{"message": "Wrapper updated successfully"})
}

// Delete удаление обёртки по ?id=
func (h *WrapperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeError(w, h.Logger, "Delete", err, "Failed to delete wrapper")
		return
	}
	writeOK(w, envelope{"message": "Wrapper deleted successfully"})
}

// LikeRequest — тело POST /api/like
type LikeRequest struct {
	WrapperID string `json:"wrapperId"`
	UserID    string `json:"userId"`
}

// Like переключение лайка. Без userId клиент определяется по адресу.
func (h *WrapperHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Like: invalid request body", "error", err)
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}
	user := req.UserID
	if user == "" {
		user = clientAddr(r)
	}

	res, err := h.Catalog.ToggleLike(r.Context(), req.WrapperID, user)
	if err != nil {
		writeError(w, h.Logger, "Like", err, "Failed to update like status")
		return
	}
	message := "Wrapper liked"
	if !res.Liked {
		message = "Wrapper unliked"
	}
	writeOK(w, envelope{"likes": res.Likes, "liked": res.Liked, "message": message})
}

// clientAddr — адрес клиента после RealIP; пустая строка, если не удалось разобрать.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// NextModel предварительный номер модели для формы загрузки
func (h *WrapperHandler) NextModel(w http.ResponseWriter, r *http.Request) {
	next, count, err := h.Catalog.NextModelNumber(r.Context())
	if err != nil {
		writeError(w, h.Logger, "NextModel", err, "Failed to get next model number")
		return
	}
	writeOK(w, envelope{"nextModelNumber": next, "existingCount": count})
}
