package service

import (
	"context"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
)

type locationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(locationRepo repository.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.locationRepo.List(ctx)
}

func (s *locationService) GetLocation(ctx context.Context, id int32) (*domain.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *locationService) SearchLocations(ctx context.Context, region string, difficulty domain.Difficulty) ([]domain.Location, error) {
	switch difficulty {
	case "", domain.DifficultyEasy, domain.DifficultyModerate, domain.DifficultyHard:
	default:
		return nil, domain.Validationf("unknown difficulty: %s", difficulty)
	}
	return s.locationRepo.Search(ctx, region, difficulty)
}
