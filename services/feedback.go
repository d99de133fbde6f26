package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/catering-app/models"
)

type FeedbackView struct {
	Visitor  string    `json:"visitor"`
	Feedback string    `json:"feedback"`
	Created  time.Time `json:"created"`
}

// Feedbacks lists the feedback of one establishment, newest first.
func (s *EstablishmentService) Feedbacks(ctx context.Context, establishmentID uint) ([]FeedbackView, error) {
	var feedbacks []models.EstablishmentFeedback
	err := s.db.WithContext(ctx).Preload("Visitor").
		Where("establishment_id = ?", establishmentID).
		Order("created_at DESC").Order("id DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feedbacks: %w", err)
	}

	out := make([]FeedbackView, 0, len(feedbacks))
	for _, f := range feedbacks {
		out = append(out, FeedbackView{Visitor: f.Visitor.Username, Feedback: f.Feedback, Created: f.CreatedAt})
	}
	return out, nil
}

func (s *EstablishmentService) CreateFeedback(ctx context.Context, establishmentID, visitorID uint, text string) (*models.EstablishmentFeedback, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newValidation("feedback", "must not be empty")
	}

	db := s.db.WithContext(ctx)
	var establishment models.Establishment
	if err := db.Select("id").First(&establishment, establishmentID).Error; err != nil {
		return nil, notFound(err, "catering establishment", establishmentID)
	}

	feedback := models.EstablishmentFeedback{
		EstablishmentID: establishmentID,
		VisitorID:       visitorID,
		Feedback:        text,
	}
	if err := db.Omit("Visitor", "Establishment").Create(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &feedback, nil
}
