package services

import (
	"context"

	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/repository"
)

type AdService interface {
	List(ctx context.Context) ([]models.Ad, error)
}

type adService struct {
	ads repository.AdRepository
}

func NewAdService(ads repository.AdRepository) AdService {
	return &adService{ads: ads}
}

func (s *adService) List(ctx context.Context) ([]models.Ad, error) {
	return s.ads.List(ctx)
}
