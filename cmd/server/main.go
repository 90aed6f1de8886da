package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectpulse-io/projectpulse/internal/bootstrap"
	"github.com/projectpulse-io/projectpulse/internal/config"
	"github.com/projectpulse-io/projectpulse/internal/modules/handler"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
	"github.com/projectpulse-io/projectpulse/internal/router"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := do.Invoke[*zap.Logger](inj)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := do.Invoke[*gorm.DB](inj)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.EnsureAdminUserExists(ctx, db, cfg, logger); err != nil {
		logger.Fatal("seed admin user", zap.Error(err))
	}

	r := router.New(router.RouterDeps{
		Config:           cfg,
		Log:              logger,
		AuthService:      do.MustInvoke[service.AuthService](inj),
		AuthHandler:      do.MustInvoke[*handler.AuthHandler](inj),
		ProjectHandler:   do.MustInvoke[*handler.ProjectHandler](inj),
		DashboardHandler: do.MustInvoke[*handler.DashboardHandler](inj),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	_ = inj.Shutdown()
}
