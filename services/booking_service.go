package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

type BookingInput struct {
	Table   uint      `json:"catering_establishment_table" binding:"required"`
	StartAt time.Time `json:"start_datetime" binding:"required"`
	EndAt   time.Time `json:"end_datetime" binding:"required"`
}

// BookingPatch holds the fields of a partial update; nil fields are kept.
type BookingPatch struct {
	Table   *uint      `json:"catering_establishment_table"`
	StartAt *time.Time `json:"start_datetime"`
	EndAt   *time.Time `json:"end_datetime"`
}

type PaymentInput struct {
	Booking uint    `json:"booking" binding:"required"`
	Amount  float64 `json:"amount"`
}

type BookingFilter struct {
	Table         *uint
	Establishment *uint
	Date          *time.Time
	ActiveOnly    bool
	IsPaid        *bool
}

type DishPriceView struct {
	ID         uint    `json:"id"`
	Dish       uint    `json:"dish"`
	FinalPrice float64 `json:"final_price"`
}

type OrderedDishView struct {
	ID                uint          `json:"id"`
	Weight            float64       `json:"weight"`
	EstablishmentDish DishPriceView `json:"catering_establishment_dish"`
}

type BookingView struct {
	ID            uint              `json:"id"`
	Table         uint              `json:"catering_establishment_table"`
	StartAt       time.Time         `json:"start_datetime"`
	EndAt         time.Time         `json:"end_datetime"`
	IsActive      bool              `json:"is_active"`
	IsPaid        bool              `json:"is_paid"`
	Establishment uint              `json:"catering_establishment,omitempty"`
	OrderedDishes []OrderedDishView `json:"ordered_dishes,omitempty"`
}

type BookingsCount struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	BookingsCount int    `json:"bookings_count"`
}

type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{db: db, notifier: orNop(notifier), now: now}
}

func checkRange(start, end time.Time) error {
	if start.After(end) {
		return newValidation("start_datetime", "must not be after end_datetime")
	}
	return nil
}

func (s *BookingService) Create(ctx context.Context, clientID uint, in BookingInput) (*models.Booking, error) {
	if err := checkRange(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var table models.EstablishmentTable
	if err := db.First(&table, in.Table).Error; err != nil {
		return nil, notFound(err, "catering establishment table", in.Table)
	}

	booking := models.Booking{
		ClientID: clientID,
		TableID:  in.Table,
		StartAt:  in.StartAt,
		EndAt:    in.EndAt,
	}
	if err := db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	var establishment models.Establishment
	if err := db.Select("id", "owner_id").First(&establishment, table.EstablishmentID).Error; err == nil {
		s.notifier.Notify(establishment.OwnerID, EventBookingCreated, booking)
	}
	utils.InfoLogger.Infof("Booking %d created for table %d", booking.ID, booking.TableID)
	return &booking, nil
}

// Update moves or retargets a booking. Only its client may change it.
func (s *BookingService) Update(ctx context.Context, id, clientID uint, patch BookingPatch) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			return notFound(err, "booking", id)
		}
		if booking.ClientID != clientID {
			return &ForbiddenError{Message: "only the booking author can change it"}
		}

		if patch.Table != nil {
			var table models.EstablishmentTable
			if err := tx.Select("id").First(&table, *patch.Table).Error; err != nil {
				return notFound(err, "catering establishment table", *patch.Table)
			}
			booking.TableID = *patch.Table
		}
		if patch.StartAt != nil {
			booking.StartAt = *patch.StartAt
		}
		if patch.EndAt != nil {
			booking.EndAt = *patch.EndAt
		}
		if err := checkRange(booking.StartAt, booking.EndAt); err != nil {
			return err
		}

		return tx.Model(&booking).Select("table_id", "start_at", "end_at").Updates(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListOwned returns the client's bookings with derived status at the current instant.
// extended adds the establishment id and ordered dishes with their final price.
func (s *BookingService) ListOwned(ctx context.Context, clientID uint, f BookingFilter, extended bool) ([]BookingView, error) {
	q := s.db.WithContext(ctx).Where("client_id = ?", clientID).Preload("Payment").Preload("Table")
	if f.Table != nil {
		q = q.Where("table_id = ?", *f.Table)
	}
	if extended {
		q = q.Preload("OrderedDishes.EstablishmentDish.Discount")
	}

	var bookings []models.Booking
	if err := q.Order("start_at").Order("id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	at := s.now()
	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		status := StatusOf(b, at)
		if !f.matches(b, status) {
			continue
		}

		view := BookingView{
			ID:       b.ID,
			Table:    b.TableID,
			StartAt:  b.StartAt,
			EndAt:    b.EndAt,
			IsActive: status.IsActive,
			IsPaid:   status.IsPaid,
		}
		if extended {
			if b.Table != nil {
				view.Establishment = b.Table.EstablishmentID
			}
			dishes, err := orderedDishViews(b.OrderedDishes, at)
			if err != nil {
				return nil, err
			}
			view.OrderedDishes = dishes
		}
		out = append(out, view)
	}
	return out, nil
}

func (f BookingFilter) matches(b models.Booking, status BookingStatus) bool {
	if f.Establishment != nil && (b.Table == nil || b.Table.EstablishmentID != *f.Establishment) {
		return false
	}
	if f.Date != nil {
		dayStart := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, f.Date.Location())
		dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
		if b.StartAt.After(dayEnd) || b.EndAt.Before(dayStart) {
			return false
		}
	}
	if f.ActiveOnly && !status.IsActive {
		return false
	}
	if f.IsPaid != nil && status.IsPaid != *f.IsPaid {
		return false
	}
	return true
}

func orderedDishViews(dishes []models.OrderedDish, at time.Time) ([]OrderedDishView, error) {
	out := make([]OrderedDishView, 0, len(dishes))
	for _, d := range dishes {
		view := OrderedDishView{ID: d.ID, Weight: d.Weight}
		if o := d.EstablishmentDish; o != nil {
			price, err := EffectivePrice(o.Price, o.Discount, at)
			if err != nil {
				return nil, err
			}
			view.EstablishmentDish = DishPriceView{ID: o.ID, Dish: o.DishID, FinalPrice: price}
		}
		out = append(out, view)
	}
	return out, nil
}

// Pay records the single payment of a booking, credits the establishment balance and
// stamps its last payment time in one transaction.
func (s *BookingService) Pay(ctx context.Context, in PaymentInput) (*models.BookingPayment, error) {
	if in.Amount < 0 {
		return nil, newValidation("amount", "must not be negative")
	}

	var (
		payment models.BookingPayment
		ownerID uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishment, err := bookingEstablishment(tx, in.Booking)
		if err != nil {
			return err
		}
		ownerID = establishment.OwnerID

		var count int64
		if err := tx.Model(&models.BookingPayment{}).Where("booking_id = ?", in.Booking).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: fmt.Sprintf("booking %d is already paid", in.Booking)}
		}

		at := s.now()
		payment = models.BookingPayment{BookingID: in.Booking, Amount: in.Amount, PaidAt: at}
		if err := tx.Omit("Booking").Create(&payment).Error; err != nil {
			// a concurrent payment can land between the count and the insert
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: fmt.Sprintf("booking %d is already paid", in.Booking)}
			}
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if err := tx.Model(&models.Establishment{}).Where("id = ?", establishment.ID).Updates(map[string]interface{}{
			"balance":         gorm.Expr("balance + ?", in.Amount),
			"last_payment_at": at,
		}).Error; err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		bookingID := in.Booking
		change := models.EstablishmentBalanceChange{
			EstablishmentID: establishment.ID,
			BookingID:       &bookingID,
			Amount:          in.Amount,
			TransactionAt:   at,
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("failed to record balance change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ownerID, EventBookingPaid, payment)
	utils.InfoLogger.Infof("Booking %d paid: %.2f", payment.BookingID, payment.Amount)
	return &payment, nil
}

// Statistics counts, per establishment of the owner, the bookings that lie within
// [start, end]. Establishments without such bookings are left out.
func (s *BookingService) Statistics(ctx context.Context, ownerID uint, start, end time.Time) ([]BookingsCount, error) {
	db := s.db.WithContext(ctx)

	var establishments []models.Establishment
	if err := db.Select("id", "name").Where("owner_id = ?", ownerID).Find(&establishments).Error; err != nil {
		return nil, fmt.Errorf("failed to load catering establishments: %w", err)
	}
	if len(establishments) == 0 {
		return []BookingsCount{}, nil
	}

	ids := make([]uint, 0, len(establishments))
	for _, e := range establishments {
		ids = append(ids, e.ID)
	}
	var tables []models.EstablishmentTable
	if err := db.Select("id", "establishment_id").Where("establishment_id IN ?", ids).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	tableOwner := make(map[uint]uint, len(tables))
	tableIDs := make([]uint, 0, len(tables))
	for _, t := range tables {
		tableOwner[t.ID] = t.EstablishmentID
		tableIDs = append(tableIDs, t.ID)
	}

	counts := make(map[uint]int)
	if len(tableIDs) > 0 {
		var bookings []models.Booking
		if err := db.Select("id", "table_id", "start_at", "end_at").Where("table_id IN ?", tableIDs).Find(&bookings).Error; err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		for _, b := range bookings {
			if b.StartAt.Before(start) || b.EndAt.After(end) {
				continue
			}
			counts[tableOwner[b.TableID]]++
		}
	}

	out := make([]BookingsCount, 0, len(counts))
	for _, e := range establishments {
		if n := counts[e.ID]; n > 0 {
			out = append(out, BookingsCount{ID: e.ID, Name: e.Name, BookingsCount: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingsCount > out[j].BookingsCount })
	return out, nil
}
