package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/catering-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinRating = 0
	MaxRating = 5
)

// AverageRating is the arithmetic mean of values, 0 for an empty slice.
func AverageRating(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

type RatingService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewRatingService(db *gorm.DB, notifier Notifier) *RatingService {
	return &RatingService{db: db, notifier: orNop(notifier)}
}

// Submit stores the visitor's rating for the establishment, overwriting a previous one,
// and returns the new average. Both steps run in one transaction.
func (s *RatingService) Submit(ctx context.Context, establishmentID, visitorID uint, value int) (float64, error) {
	if value < MinRating || value > MaxRating {
		return 0, newValidation("rating", "must be within [%d, %d]", MinRating, MaxRating)
	}

	var (
		avg     float64
		ownerID uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var establishment models.Establishment
		if err := tx.Select("id", "owner_id").First(&establishment, establishmentID).Error; err != nil {
			return notFound(err, "catering establishment", establishmentID)
		}
		ownerID = establishment.OwnerID

		rating := models.EstablishmentRating{
			EstablishmentID: establishmentID,
			VisitorID:       visitorID,
			Rating:          value,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "establishment_id"}, {Name: "visitor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating"}),
		}).Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}

		var err error
		avg, err = averageFor(tx, establishmentID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.notifier.Notify(ownerID, EventRatingUpdated, map[string]interface{}{
		"catering_establishment": establishmentID,
		"avg_rating":             avg,
	})
	return avg, nil
}

func (s *RatingService) Average(ctx context.Context, establishmentID uint) (float64, error) {
	return averageFor(s.db.WithContext(ctx), establishmentID)
}

// Averages returns the average rating of every requested establishment; establishments
// without ratings map to 0.
func (s *RatingService) Averages(ctx context.Context, establishmentIDs []uint) (map[uint]float64, error) {
	return averagesFor(s.db.WithContext(ctx), establishmentIDs)
}

// UserRating returns the rating the visitor gave to the establishment.
func (s *RatingService) UserRating(ctx context.Context, establishmentID, visitorID uint) (int, error) {
	var rating models.EstablishmentRating
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND visitor_id = ?", establishmentID, visitorID).
		First(&rating).Error
	if err != nil {
		return 0, notFound(err, "rating for catering establishment", establishmentID)
	}
	return rating.Rating, nil
}

func averageFor(db *gorm.DB, establishmentID uint) (float64, error) {
	avgs, err := averagesFor(db, []uint{establishmentID})
	if err != nil {
		return 0, err
	}
	return avgs[establishmentID], nil
}

func averagesFor(db *gorm.DB, establishmentIDs []uint) (map[uint]float64, error) {
	out := make(map[uint]float64, len(establishmentIDs))
	if len(establishmentIDs) == 0 {
		return out, nil
	}

	var ratings []models.EstablishmentRating
	if err := db.Where("establishment_id IN ?", establishmentIDs).Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	values := make(map[uint][]int, len(establishmentIDs))
	for _, r := range ratings {
		values[r.EstablishmentID] = append(values[r.EstablishmentID], r.Rating)
	}
	for _, id := range establishmentIDs {
		out[id] = AverageRating(values[id])
	}
	return out, nil
}
