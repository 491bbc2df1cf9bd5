package handlers_test

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/handlers"
	"ChocoWrappers/internal/model"
	"ChocoWrappers/internal/repo"
	"ChocoWrappers/internal/service"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// lostStore — коллекция, у которой пропало соединение после выбора хранилища
type lostStore struct {
	repo.WrapperStore
}

func (lostStore) FindAll(context.Context, repo.Filter, string) ([]model.Wrapper, error) {
	return nil, fmt.Errorf("find wrappers: %w", repo.ErrConnection)
}

// lostBackend проходит проверку при выборе, но затем теряет соединение
type lostBackend struct {
	*repo.MemoryBackend
}

func (lostBackend) Name() string                  { return repo.BackendMongo }
func (b lostBackend) Wrappers() repo.WrapperStore { return lostStore{b.MemoryBackend.Wrappers()} }

func TestHandlers_LostConnectionFailsOver(t *testing.T) {
	logger := zap.NewNop().Sugar()
	live := lostBackend{repo.NewMemoryBackend(nil)}
	fallback := repo.NewMemoryBackend(nil)
	_, err := fallback.Wrappers().InsertOne(context.Background(), &model.Wrapper{ModelNumber: "MC001", Name: "Rose", Price: 300})
	require.NoError(t, err)

	sel := repo.NewSelector(logger, time.Second,
		repo.Factory{Name: repo.BackendMongo, Open: func(context.Context) (repo.Backend, error) { return live, nil }},
		repo.Factory{Name: repo.BackendMemory, Open: func(context.Context) (repo.Backend, error) { return fallback, nil }},
	)
	catalog := service.NewCatalogService(sel, ist, logger)
	admins := service.NewAdminService(sel, "admin", "admin123", 10, logger)
	router := handlers.NewHandler(catalog, admins, logger, &config.Config{AuthSecret: "s"}).Router

	for i := range 3 {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/wrappers", nil))
		require.Equal(t, http.StatusOK, rr.Code, "request %d: %s", i, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "MC001")
	}
	assert.Equal(t, repo.BackendMemory, sel.Current().Name())
}

func TestHandlers_LostConnectionWithoutFallback(t *testing.T) {
	logger := zap.NewNop().Sugar()
	live := lostBackend{repo.NewMemoryBackend(nil)}
	sel := repo.NewSelector(logger, time.Second,
		repo.Factory{Name: repo.BackendMongo, Open: func(context.Context) (repo.Backend, error) { return live, nil }},
	)
	catalog := service.NewCatalogService(sel, ist, logger)
	admins := service.NewAdminService(sel, "admin", "admin123", 10, logger)
	router := handlers.NewHandler(catalog, admins, logger, &config.Config{AuthSecret: "s"}).Router

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/wrappers", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to fetch wrappers")
}
