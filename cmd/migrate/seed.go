package main

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/pkg/config"
	"github.com/hirehub/server/pkg/logger"
)

const (
	adminEmail    = "admin@admin"
	adminPassword = "admin123"
)

// seedAdminIfEnabled seeds the admin when SEED_ADMIN is set in development or test.
func seedAdminIfEnabled(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if !cfg.SeedAdmin {
		return nil
	}
	if !cfg.IsDevelopment() {
		logger.L().Warn("SEED_ADMIN ignored outside development and test", zap.String("env", cfg.AppEnv))
		return nil
	}
	return seedAdmin(ctx, db)
}

// seedAdmin creates the bootstrap admin account unless it already exists.
func seedAdmin(ctx context.Context, db *gorm.DB) error {
	hash, err := auth.NewBcryptHasher(bcrypt.DefaultCost).Hash(adminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Provider:     models.ProviderLocal,
		Name:         "admin",
		Nickname:     "admin",
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.L().Info("admin account seeded", zap.String("email", adminEmail))
	}
	return nil
}
