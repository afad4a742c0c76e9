package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/pkg/database"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Set(zap.NewNop())
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

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.c", PasswordHash: "h", Role: models.RoleUser}))
	err := repo.Create(ctx, &models.User{Email: "a@b.c", PasswordHash: "h", Role: models.RoleUser})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))

	var u models.User
	require.NoError(t, repo.GetByEmail(ctx, "a@b.c", &u))
	assert.NotZero(t, u.ID)

	err = repo.GetByEmail(ctx, "nobody@b.c", &u)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUserRepositoryWithdraw(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "w@b.c", PasswordHash: "h", Nickname: "w", Name: "Won"}))

	ok, err := repo.Withdraw(ctx, "w@b.c")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Withdraw(ctx, "w@b.c")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Withdraw(ctx, "absent@b.c")
	require.NoError(t, err)
	assert.False(t, ok)

	var u models.User
	err = repo.GetActiveByEmail(ctx, "w@b.c", &u)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	require.NoError(t, repo.GetByEmail(ctx, "w@b.c", &u))
	assert.True(t, u.IsWithdrawn())
	// only the nickname carries the sentinel; the rest of the row is kept
	assert.Equal(t, models.WithdrawnNickname, u.Nickname)
	assert.Equal(t, "Won", u.Name)
	assert.Equal(t, "h", u.PasswordHash)
}

func TestUserRepositoryTakenExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.c", PasswordHash: "h", Nickname: "kim", Phone: "010"}))

	taken, err := repo.NicknameTaken(ctx, "kim", "a@b.c")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.NicknameTaken(ctx, "kim", "other@b.c")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.PhoneTaken(ctx, "010", "other@b.c")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserNicknameAndPhoneAreUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.c", PasswordHash: "h", Nickname: "kim", Phone: "010"}))

	// blank values are not claimed
	require.NoError(t, repo.Create(ctx, &models.User{Email: "b@b.c", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "c@b.c", PasswordHash: "h"}))

	var b models.User
	require.NoError(t, repo.GetByEmail(ctx, "b@b.c", &b))
	b.Nickname = "kim"
	err := repo.Update(ctx, &b)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict), "got %v", err)

	require.NoError(t, repo.GetByEmail(ctx, "b@b.c", &b))
	b.Phone = "010"
	err = repo.Update(ctx, &b)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict), "got %v", err)

	// every withdrawn user shares the sentinel nickname
	for _, email := range []string{"a@b.c", "b@b.c", "c@b.c"} {
		ok, err := repo.Withdraw(ctx, email)
		require.NoError(t, err)
		assert.True(t, ok, email)
	}
}

func TestChatRepositoryAppendCreatesSession(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewChatRepository(db)

	require.NoError(t, repo.Append(ctx, &models.LiveChat{SessionID: "r1", Content: "hello", CreateAt: time.Now()}))
	require.NoError(t, repo.Append(ctx, &models.LiveChat{SessionID: "r1", Content: "again", CreateAt: time.Now()}))

	var sessions int64
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", "r1").Count(&sessions).Error)
	assert.Equal(t, int64(1), sessions)

	n, err := repo.CountBySession(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestChatRepositoryRecentIsSingleJoinedQuery(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewChatRepository(db)

	u := &models.User{Email: "a@b.c", PasswordHash: "h", Nickname: "kim"}
	require.NoError(t, users.Create(ctx, u))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m := &models.LiveChat{SessionID: "r1", Content: fmt.Sprintf("m%d", i), CreateAt: base.Add(time.Duration(i) * time.Second)}
		if i%2 == 0 {
			m.UserID = &u.ID
		}
		require.NoError(t, repo.Append(ctx, m))
	}
	// same timestamp as m4; id breaks the tie
	require.NoError(t, repo.Append(ctx, &models.LiveChat{SessionID: "r1", Content: "m5", CreateAt: base.Add(4 * time.Second)}))

	var queries atomic.Int32
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count", func(*gorm.DB) {
		queries.Add(1)
	}))

	out, err := repo.RecentBySession(ctx, "r1", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), queries.Load())

	require.Len(t, out, 3)
	assert.Equal(t, "m5", out[0].Content)
	assert.Equal(t, "m4", out[1].Content)
	assert.Equal(t, "m3", out[2].Content)
	require.NotNil(t, out[1].User)
	assert.Equal(t, "kim", out[1].User.Nickname)
}

func TestAdRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewAdRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.Ad{Photo: "https://cdn/a.png"}))
	require.NoError(t, repo.Create(ctx, &models.Ad{Photo: "https://cdn/b.png"}))

	ads, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "https://cdn/a.png", ads[0].Photo)
}
