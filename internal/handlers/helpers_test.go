package handlers_test

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/handlers"
	"ChocoWrappers/internal/middleware"
	"ChocoWrappers/internal/repo"
	"ChocoWrappers/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type testEnv struct {
	router  http.Handler
	cfg     *config.Config
	backend *repo.MemoryBackend
	catalog *service.CatalogService
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "test-secret"
	}
	logger := zap.NewNop().Sugar()
	b := repo.NewMemoryBackend(nil)
	sel := repo.NewSelector(logger, time.Second, repo.Factory{
		Name: repo.BackendMemory,
		Open: func(context.Context) (repo.Backend, error) { return b, nil },
	})

	catalog := service.NewCatalogService(sel, ist, logger)
	admins := service.NewAdminService(sel, "admin", "admin123", 100, logger)
	h := handlers.NewHandler(catalog, admins, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, backend: b, catalog: catalog}
}

// at фиксирует часы каталога на указанное местное время
func (e *testEnv) at(hour int) {
	e.catalog.SetClock(func() time.Time { return time.Date(2025, 8, 20, hour, 0, 0, 0, ist) })
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	var body map[string]any
	if rr.Body.Len() > 0 && rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func jsonRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func addAdminCookie(t *testing.T, req *http.Request, username, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, username, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}
