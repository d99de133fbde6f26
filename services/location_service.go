package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/catering-app/models"
	"gorm.io/gorm"
)

type LocationsData struct {
	Countries   []models.Country    `json:"countries"`
	Regions     []models.Region     `json:"regions"`
	Settlements []models.Settlement `json:"settlements"`
	Addresses   []models.Address    `json:"addresses"`
}

type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

func (s *LocationService) All(ctx context.Context) (*LocationsData, error) {
	db := s.db.WithContext(ctx)
	data := &LocationsData{
		Countries:   []models.Country{},
		Regions:     []models.Region{},
		Settlements: []models.Settlement{},
		Addresses:   []models.Address{},
	}
	if err := db.Order("id").Find(&data.Countries).Error; err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}
	if err := db.Order("id").Find(&data.Regions).Error; err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	if err := db.Order("id").Find(&data.Settlements).Error; err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	if err := db.Order("id").Find(&data.Addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	return data, nil
}
