package bootstrap

import (
	"context"
	"strings"

	"github.com/projectpulse-io/projectpulse/internal/config"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/pkg/utils/secrets"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureAdminUserExists creates or realigns the seed admin account when the
// service starts. Project deletion is admin-only, so a fresh deployment needs
// at least one admin to be usable.
func EnsureAdminUserExists(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Auth.AdminEmail))
	password := cfg.Auth.AdminPassword

	if email == "" || password == "" {
		return nil
	}

	var admin model.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&admin).Error

	switch err {
	case nil:
		// Account exists; realign its password and role with config.
		phc, err := secrets.HashSecret(password, cfg.Auth.SecretPepper)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"password_hash": phc,
			"role":          model.RoleAdmin,
			"is_active":     true,
		}
		if uErr := db.WithContext(ctx).Model(&admin).Updates(updates).Error; uErr != nil {
			return uErr
		}
		log.Sugar().Infow("admin user exists", "user", admin.ID)
		return nil

	case gorm.ErrRecordNotFound:
		phc, err := secrets.HashSecret(password, cfg.Auth.SecretPepper)
		if err != nil {
			return err
		}

		newAdmin := model.User{
			Name:         cfg.Auth.AdminName,
			Email:        email,
			PasswordHash: phc,
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if cErr := db.WithContext(ctx).Create(&newAdmin).Error; cErr != nil {
			return cErr
		}
		log.Sugar().Infow("admin user created", "user", newAdmin.ID)
		return nil

	default:
		return err
	}
}
