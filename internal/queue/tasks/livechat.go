package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/repository"
	"github.com/hirehub/server/pkg/logger"
)

// TypeLiveChatAppend replays a chat message that could not be stored on the hot path.
const TypeLiveChatAppend = "livechat:append"

// LiveChatAppendPayload is the task payload for TypeLiveChatAppend.
type LiveChatAppendPayload struct {
	SessionID string    `json:"session_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Content   string    `json:"content"`
	Role      string    `json:"role,omitempty"`
	CreateAt  time.Time `json:"create_at"`
}

// NewLiveChatAppendTask builds the retry task with a bounded retry budget.
func NewLiveChatAppendTask(p LiveChatAppendPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLiveChatAppend, b, asynq.MaxRetry(10), asynq.Timeout(30*time.Second)), nil
}

// LiveChatTaskHandler stores replayed chat messages.
type LiveChatTaskHandler struct {
	chats repository.ChatRepository
}

func NewLiveChatTaskHandler(chats repository.ChatRepository) *LiveChatTaskHandler {
	return &LiveChatTaskHandler{chats: chats}
}

func (h *LiveChatTaskHandler) HandleAppend(ctx context.Context, t *asynq.Task) error {
	var p LiveChatAppendPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid livechat task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.SessionID == "" || strings.TrimSpace(p.Content) == "" {
		logger.L().Error("livechat task missing session or content", zap.String("session_id", p.SessionID))
		return fmt.Errorf("incomplete payload: %w", asynq.SkipRetry)
	}
	if p.CreateAt.IsZero() {
		p.CreateAt = time.Now()
	}

	logger.L().Info("replaying live chat append", zap.String("session_id", p.SessionID))
	msg := &models.LiveChat{
		SessionID: p.SessionID,
		UserID:    p.UserID,
		Content:   p.Content,
		Role:      p.Role,
		CreateAt:  p.CreateAt,
	}
	if err := h.chats.Append(ctx, msg); err != nil {
		logger.L().Warn("livechat replay failed", zap.Error(err), zap.String("session_id", p.SessionID))
		return err
	}
	return nil
}
