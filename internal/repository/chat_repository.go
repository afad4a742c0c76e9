package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirehub/server/internal/models"
	appErr "github.com/hirehub/server/pkg/errors"
)

type ChatRepository interface {
	// Append stores msg, creating its session row first when absent.
	Append(ctx context.Context, msg *models.LiveChat) error
	// RecentBySession returns up to limit messages newest-first with User joined in one query.
	RecentBySession(ctx context.Context, sessionID string, limit int) ([]models.LiveChat, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(ctx context.Context, msg *models.LiveChat) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := models.Session{ID: msg.SessionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(msg).Error
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "append live chat failed")
	}
	return nil
}

func (r *chatRepository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]models.LiveChat, error) {
	var out []models.LiveChat
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("live_chat.session_id = ?", sessionID).
		Order("live_chat.create_at DESC").
		Order("live_chat.id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "load chat history failed")
	}
	return out, nil
}

func (r *chatRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.LiveChat{}).Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count chat failed")
	}
	return n, nil
}
