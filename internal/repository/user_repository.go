package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hirehub/server/internal/models"
	appErr "github.com/hirehub/server/pkg/errors"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	// GetActiveByEmail is GetByEmail restricted to users that have not withdrawn.
	GetActiveByEmail(ctx context.Context, email string, dest *models.User) error
	NicknameTaken(ctx context.Context, nickname, exceptEmail string) (bool, error)
	PhoneTaken(ctx context.Context, phone, exceptEmail string) (bool, error)
	// Withdraw stamps the withdrawn sentinel and reports whether a row changed.
	Withdraw(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email), dest)
}

func (r *userRepository) GetActiveByEmail(ctx context.Context, email string, dest *models.User) error {
	q := r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("(nickname IS NULL OR nickname <> ?)", models.WithdrawnNickname)
	return r.first(q, dest)
}

func (r *userRepository) first(q *gorm.DB, dest *models.User) error {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}

func (r *userRepository) NicknameTaken(ctx context.Context, nickname, exceptEmail string) (bool, error) {
	return r.taken(ctx, "nickname", nickname, exceptEmail)
}

func (r *userRepository) PhoneTaken(ctx context.Context, phone, exceptEmail string) (bool, error) {
	return r.taken(ctx, "phone", phone, exceptEmail)
}

func (r *userRepository) taken(ctx context.Context, column, value, exceptEmail string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ?", value).
		Where("email <> ?", exceptEmail).
		Count(&n).Error
	if err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "check "+column+" failed")
	}
	return n > 0, nil
}

func (r *userRepository) Withdraw(ctx context.Context, email string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Where("(nickname IS NULL OR nickname <> ?)", models.WithdrawnNickname).
		Update("nickname", models.WithdrawnNickname)
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "withdraw user failed")
	}
	return res.RowsAffected > 0, nil
}
