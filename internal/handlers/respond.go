package handlers

import (
	"ChocoWrappers/internal/repo"
	"ChocoWrappers/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// envelope — общий вид ответа API: success, message и произвольные поля.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// writeError переводит ошибку сервиса в HTTP-ответ. Неожиданные ошибки
// логируются, а клиент получает только общее сообщение fallback.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := envelope{"success": false, "message": verr.Message}
		if len(verr.Fields) > 0 {
			body["fields"] = verr.Fields
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, service.ErrNotFound):
		writeFail(w, http.StatusNotFound, "Wrapper not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeFail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrTooManyAttempts):
		writeFail(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
	case errors.Is(err, repo.ErrNoBackend), errors.Is(err, repo.ErrConnection):
		logger.Errorw(op+": no storage backend available", "error", err)
		writeFail(w, http.StatusServiceUnavailable, fallback)
	default:
		logger.Errorw(op+": service error", "error", err)
		writeFail(w, http.StatusInternalServerError, fallback)
	}
}
