package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirehub/server/internal/models"
	appErr "github.com/hirehub/server/pkg/errors"
)

type AdRepository interface {
	BaseRepository[models.Ad]
	List(ctx context.Context) ([]models.Ad, error)
}

type adRepository struct {
	BaseRepository[models.Ad]
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{BaseRepository: NewBaseRepository[models.Ad](db), db: db}
}

func (r *adRepository) List(ctx context.Context) ([]models.Ad, error) {
	var out []models.Ad
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list ads failed")
	}
	return out, nil
}
