package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/pkg/config"
	"github.com/hirehub/server/pkg/database"
	"github.com/hirehub/server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Set(zap.NewNop())
	os.Exit(m.Run())
}

func TestMigrationsAndAdminSeed(t *testing.T) {
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)

	require.NoError(t, runMigrations(db))
	require.NoError(t, runMigrations(db), "migrations must be re-runnable")

	ctx := context.Background()
	require.NoError(t, seedAdmin(ctx, db))
	require.NoError(t, seedAdmin(ctx, db))

	var admins []models.User
	require.NoError(t, db.Where("email = ?", adminEmail).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, models.RoleAdmin, admins[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].PasswordHash), []byte(adminPassword)))
}

func TestAdminSeedOnlyInDevelopment(t *testing.T) {
	tests := []struct {
		env    string
		seed   bool
		admins int64
	}{
		{"development", true, 1},
		{"test", true, 1},
		{"test", false, 0},
		{"staging", true, 0},
		{"production", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			db, err := database.OpenSQLite("file::memory:")
			require.NoError(t, err)
			require.NoError(t, runMigrations(db))

			cfg := &config.Config{AppEnv: tt.env, SeedAdmin: tt.seed}
			require.NoError(t, seedAdminIfEnabled(context.Background(), db, cfg))

			var n int64
			require.NoError(t, db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&n).Error)
			assert.Equal(t, tt.admins, n)
		})
	}
}
