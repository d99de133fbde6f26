package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/catering-app/models"
	"gorm.io/gorm"
)

// OrderItem is one requested line of a booking order.
type OrderItem struct {
	EstablishmentDishID uint    `json:"catering_establishment_dish" binding:"required"`
	Weight              float64 `json:"weight" binding:"required"`
}

type OrderService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{db: db, notifier: orNop(notifier)}
}

// ReplaceOrderedDishes swaps the whole order of a booking for items. An empty slice
// clears the order. Nothing is changed when any step fails.
func (s *OrderService) ReplaceOrderedDishes(ctx context.Context, bookingID uint, items []OrderItem) error {
	var ownerID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishment, err := bookingEstablishment(tx, bookingID)
		if err != nil {
			return err
		}
		ownerID = establishment.OwnerID

		if err := checkOfferings(tx, establishment.ID, items); err != nil {
			return err
		}

		if err := tx.Where("booking_id = ?", bookingID).Delete(&models.OrderedDish{}).Error; err != nil {
			return fmt.Errorf("failed to clear ordered dishes: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		dishes := make([]models.OrderedDish, 0, len(items))
		for _, item := range items {
			dishes = append(dishes, models.OrderedDish{
				BookingID:           bookingID,
				EstablishmentDishID: item.EstablishmentDishID,
				Weight:              item.Weight,
			})
		}
		if err := tx.Create(&dishes).Error; err != nil {
			return fmt.Errorf("failed to create ordered dishes: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ownerID, EventOrderUpdated, map[string]interface{}{
		"booking":        bookingID,
		"ordered_dishes": items,
	})
	return nil
}

// AddOrderedDish appends one line to the booking order.
func (s *OrderService) AddOrderedDish(ctx context.Context, bookingID uint, item OrderItem) (*models.OrderedDish, error) {
	var (
		dish    models.OrderedDish
		ownerID uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishment, err := bookingEstablishment(tx, bookingID)
		if err != nil {
			return err
		}
		ownerID = establishment.OwnerID

		if err := checkOfferings(tx, establishment.ID, []OrderItem{item}); err != nil {
			return err
		}

		dish = models.OrderedDish{
			BookingID:           bookingID,
			EstablishmentDishID: item.EstablishmentDishID,
			Weight:              item.Weight,
		}
		if err := tx.Create(&dish).Error; err != nil {
			return fmt.Errorf("failed to create ordered dish: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ownerID, EventOrderUpdated, map[string]interface{}{
		"booking":        bookingID,
		"ordered_dishes": []OrderItem{item},
	})
	return &dish, nil
}

// bookingEstablishment resolves the establishment that owns the booked table.
func bookingEstablishment(tx *gorm.DB, bookingID uint) (*models.Establishment, error) {
	var booking models.Booking
	if err := tx.Preload("Table").First(&booking, bookingID).Error; err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if booking.Table == nil {
		return nil, &NotFoundError{Entity: "catering establishment table", ID: booking.TableID}
	}

	var establishment models.Establishment
	if err := tx.Select("id", "owner_id").First(&establishment, booking.Table.EstablishmentID).Error; err != nil {
		return nil, notFound(err, "catering establishment", booking.Table.EstablishmentID)
	}
	return &establishment, nil
}

func checkOfferings(tx *gorm.DB, establishmentID uint, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Weight <= 0 {
			return newValidation("weight", "must be positive")
		}
		ids = append(ids, item.EstablishmentDishID)
	}

	var offerings []models.EstablishmentDish
	if err := tx.Select("id", "establishment_id").Where("id IN ?", ids).Find(&offerings).Error; err != nil {
		return fmt.Errorf("failed to load dish offerings: %w", err)
	}
	known := make(map[uint]uint, len(offerings))
	for _, o := range offerings {
		known[o.ID] = o.EstablishmentID
	}

	for _, id := range ids {
		owner, ok := known[id]
		if !ok {
			return &NotFoundError{Entity: "catering establishment dish", ID: id}
		}
		if owner != establishmentID {
			return newValidation("catering_establishment_dish", "dish %d is not served by the booked establishment", id)
		}
	}
	return nil
}
