package services

import (
	"context"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/queue/tasks"
	"github.com/hirehub/server/internal/repository"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 200
)

// AppendInput is one chat message to be stored.
type AppendInput struct {
	SessionID string
	UserID    *int64
	Content   string
	Role      string
	At        time.Time
}

// ChatMessage is a stored message projected with its sender's display identity.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    *int64    `json:"userId"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content"`
	CreateAt  time.Time `json:"createAt"`
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ChatService is the chat log boundary used by the live-support path and the REST fallback.
type ChatService interface {
	Append(ctx context.Context, in AppendInput) (*models.LiveChat, error)
	// EnqueueRetry hands a message that failed to persist to the background worker.
	EnqueueRetry(ctx context.Context, in AppendInput) error
	// History returns up to limit messages of a session, oldest first.
	History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
	// LookupUser returns the user with the given id, or nil when it does not exist.
	LookupUser(ctx context.Context, userID int64) (*models.User, error)
}

type chatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
	queue TaskEnqueuer
	now   func() time.Time
}

// NewChatService builds the chat log service. queue may be nil, in which case
// failed appends are only logged.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, queue TaskEnqueuer) ChatService {
	return &chatService{chats: chats, users: users, queue: queue, now: time.Now}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) Append(ctx context.Context, in AppendInput) (*models.LiveChat, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "session id is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "content is required")
	}
	if in.At.IsZero() {
		in.At = s.now()
	}
	msg := &models.LiveChat{
		SessionID: in.SessionID,
		UserID:    in.UserID,
		Content:   in.Content,
		Role:      in.Role,
		CreateAt:  in.At,
	}
	if err := s.chats.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *chatService) EnqueueRetry(ctx context.Context, in AppendInput) error {
	if s.queue == nil {
		logger.L().Warn("task queue not configured, chat message not retried", zap.String("session_id", in.SessionID))
		return appErr.New(appErr.CodeUnavailable, "task queue not configured")
	}
	task, err := tasks.NewLiveChatAppendTask(tasks.LiveChatAppendPayload{
		SessionID: in.SessionID,
		UserID:    in.UserID,
		Content:   in.Content,
		Role:      in.Role,
		CreateAt:  in.At,
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "build livechat task failed")
	}
	if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		logger.L().Error("enqueue livechat task failed", zap.Error(err), zap.String("session_id", in.SessionID))
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue livechat task failed")
	}
	logger.L().Info("livechat append enqueued for retry", zap.String("session_id", in.SessionID))
	return nil
}

func (s *chatService) History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	rows, err := s.chats.RecentBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ChatMessage, len(rows))
	for i, r := range rows {
		// rows are newest-first
		out[len(rows)-1-i] = project(r)
	}
	return out, nil
}

func project(r models.LiveChat) ChatMessage {
	var u *models.User
	if r.User != nil && r.User.ID != 0 {
		u = r.User
	}
	m := ChatMessage{
		ID:        r.ID,
		SessionID: r.SessionID,
		UserID:    r.UserID,
		Nickname:  u.DisplayNickname(),
		Role:      r.Role,
		Content:   r.Content,
		CreateAt:  r.CreateAt,
	}
	if u != nil {
		m.Email = u.Email
	}
	return m
}

func (s *chatService) LookupUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	if err := s.users.GetByID(ctx, userID, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
