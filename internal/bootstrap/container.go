package bootstrap

import (
	"github.com/projectpulse-io/projectpulse/internal/config"
	"github.com/projectpulse-io/projectpulse/internal/infra/cache"
	"github.com/projectpulse-io/projectpulse/internal/infra/db"
	"github.com/projectpulse-io/projectpulse/internal/infra/logger"
	"github.com/projectpulse-io/projectpulse/internal/modules/handler"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}

		if cfg.Database.AutoMigrate {
			// uuid defaults rely on gen_random_uuid (pgcrypto on older PG)
			_ = d.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto")

			if err := d.AutoMigrate(
				&model.User{},
				&model.Project{},
			); err != nil {
				return nil, err
			}
		}

		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.DashboardRepo, error) {
		return repo.NewDashboardRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DashboardService, error) {
		return service.NewDashboardService(
			do.MustInvoke[repo.DashboardRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DashboardHandler, error) {
		return handler.NewDashboardHandler(do.MustInvoke[service.DashboardService](i)), nil
	})

	return inj
}
