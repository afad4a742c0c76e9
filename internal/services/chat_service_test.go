package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/queue/tasks"
	"github.com/hirehub/server/internal/repository"
	appErr "github.com/hirehub/server/pkg/errors"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHistoryOldestFirstWithNicknames(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewChatService(repository.NewChatRepository(db), users, nil)

	withNick := &models.User{Email: "a@b.c", PasswordHash: "h", Nickname: "kim", Name: "Kim"}
	nameOnly := &models.User{Email: "d@e.f", PasswordHash: "h", Name: "Lee"}
	require.NoError(t, users.Create(ctx, withNick))
	require.NoError(t, users.Create(ctx, nameOnly))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inputs := []AppendInput{
		{SessionID: "r1", UserID: &withNick.ID, Content: "one", At: base},
		{SessionID: "r1", UserID: &nameOnly.ID, Content: "two", At: base.Add(time.Second)},
		{SessionID: "r1", Content: "three", At: base.Add(2 * time.Second)},
		{SessionID: "r2", Content: "elsewhere", At: base},
	}
	for _, in := range inputs {
		_, err := svc.Append(ctx, in)
		require.NoError(t, err)
	}

	hist, err := svc.History(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{hist[0].Content, hist[1].Content, hist[2].Content})
	assert.Equal(t, "kim", hist[0].Nickname)
	assert.Equal(t, "Lee", hist[1].Nickname)
	assert.Equal(t, models.AnonymousNickname, hist[2].Nickname)
	assert.Nil(t, hist[2].UserID)

	last, err := svc.History(ctx, "r1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "two", last[0].Content)
	assert.Equal(t, "three", last[1].Content)
}

func TestAppendValidates(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), repository.NewUserRepository(db), nil)

	_, err := svc.Append(ctx, AppendInput{SessionID: "r1", Content: "   "})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	_, err = svc.Append(ctx, AppendInput{Content: "hi"})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestEnqueueRetry(t *testing.T) {
	db := newTestDB(t)
	q := new(mockEnqueuer)
	svc := NewChatService(repository.NewChatRepository(db), repository.NewUserRepository(db), q)

	q.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == tasks.TypeLiveChatAppend
	})).Return(&asynq.TaskInfo{ID: "t1"}, nil).Once()
	require.NoError(t, svc.EnqueueRetry(ctx, AppendInput{SessionID: "r1", Content: "hi", At: time.Now()}))

	q.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()
	err := svc.EnqueueRetry(ctx, AppendInput{SessionID: "r1", Content: "hi"})
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	q.AssertExpectations(t)

	noQueue := NewChatService(repository.NewChatRepository(db), repository.NewUserRepository(db), nil)
	assert.Error(t, noQueue.EnqueueRetry(ctx, AppendInput{SessionID: "r1", Content: "hi"}))
}

func TestLookupUser(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewChatService(repository.NewChatRepository(db), users, nil)

	u := &models.User{Email: "a@b.c", PasswordHash: "h", Name: "Kim"}
	require.NoError(t, users.Create(ctx, u))

	got, err := svc.LookupUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim", got.Name)

	missing, err := svc.LookupUser(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
