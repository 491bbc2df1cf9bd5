package handlers

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/middleware"
	"ChocoWrappers/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler вход и выход администратора.
type AuthHandler struct {
	Admins *service.AdminService
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewAuthHandler(admins *service.AdminService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Admins: admins, Logger: logger, Config: cfg}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login проверка учётных данных и выдача cookie администратора
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	admin, err := h.Admins.Login(r.Context(), clientAddr(r), req.Username, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err, "Internal server error")
		return
	}

	if err := middleware.SetLoginCookie(w, admin.Username, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to issue token", "username", admin.Username, "error", err)
		writeFail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.Logger.Infow("admin logged in", "username", admin.Username)
	writeOK(w, envelope{
		"message": "Login successful",
		"admin":   envelope{"username": admin.Username},
	})
}

// Logout удаляет cookie администратора
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	writeOK(w, envelope{"message": "Logged out"})
}
