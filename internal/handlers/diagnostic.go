package handlers

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/service"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DiagnosticHandler — состояние хранилища для оператора.
type DiagnosticHandler struct {
	Catalog *service.CatalogService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

func NewDiagnosticHandler(catalog *service.CatalogService, logger *zap.SugaredLogger, cfg *config.Config) *DiagnosticHandler {
	return &DiagnosticHandler{Catalog: catalog, Logger: logger, Config: cfg}
}

// Diagnostic выбранное хранилище, число записей и время запроса к нему
func (h *DiagnosticHandler) Diagnostic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.Catalog.Stats(r.Context())
	if err != nil {
		writeError(w, h.Logger, "Diagnostic", err, "Storage unavailable")
		return
	}
	writeOK(w, envelope{
		"backend":   stats.Backend,
		"database":  h.Config.MongoDatabase,
		"mode":      h.Config.DeployMode,
		"queryTime": time.Since(start).Round(time.Millisecond).String(),
		"counts": envelope{
			"wrappers": stats.Wrappers,
			"admins":   stats.Admins,
		},
		"mongoUri":   h.Config.MaskedMongoURI(),
		"serverTime": time.Now().UTC().Format(time.RFC3339),
	})
}
