package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/repository"
	"github.com/hirehub/server/pkg/database"
	"github.com/hirehub/server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Set(zap.NewNop())
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	tokens, err := auth.NewTokenManager([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return NewAuthService(repository.NewUserRepository(db), auth.NewBcryptHasher(bcrypt.MinCost), tokens)
}

var ctx = context.Background()
