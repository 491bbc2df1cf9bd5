package main

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/handlers"
	"ChocoWrappers/internal/logger"
	"ChocoWrappers/internal/middleware"
	"ChocoWrappers/internal/repo"
	"ChocoWrappers/internal/service"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	sugar := logger.New(cfg)
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = sugar.Sync()
	}()

	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.LateNightTZ)
	if err != nil {
		sugar.Fatalw("invalid late night timezone", "tz", cfg.LateNightTZ, "error", err)
	}

	// хранилище выбирается один раз; ошибка здесь не фатальна — Resolve повторит цепочку
	selector := repo.NewSelectorFromConfig(cfg, sugar)
	if err := selector.Init(ctx); err != nil {
		sugar.Errorw("no storage backend available at startup", "error", err)
	}

	catalog := service.NewCatalogService(selector, loc, sugar)
	admins := service.NewAdminService(selector, cfg.AdminUsername, cfg.AdminPassword, cfg.LoginRatePerMin, sugar)

	h := handlers.NewHandler(catalog, admins, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"DeployMode", cfg.DeployMode,
		"AppEnv", cfg.AppEnv,
		"MongoURI", cfg.MaskedMongoURI(),
		"MongoDatabase", cfg.MongoDatabase,
		"LateNightTZ", cfg.LateNightTZ,
		"RequireAdmin", cfg.RequireAdmin,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err)
	}
	if err := selector.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Storage shutdown failed", "error", err)
	}
}
