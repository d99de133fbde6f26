package services

import (
	"time"

	"github.com/yeremiapane/catering-app/models"
)

type BookingStatus struct {
	IsActive bool `json:"is_active"`
	IsPaid   bool `json:"is_paid"`
}

// EvaluateBooking derives the status of a booking at the given instant. A booking
// that ends exactly at `at` is still active.
func EvaluateBooking(start, end time.Time, hasPayment bool, at time.Time) BookingStatus {
	return BookingStatus{
		IsActive: !end.Before(at),
		IsPaid:   hasPayment,
	}
}

func StatusOf(b models.Booking, at time.Time) BookingStatus {
	return EvaluateBooking(b.StartAt, b.EndAt, b.Payment != nil, at)
}

// ActiveOnly keeps the bookings that are active at `at`, preserving order.
func ActiveOnly(bookings []models.Booking, at time.Time) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if StatusOf(b, at).IsActive {
			out = append(out, b)
		}
	}
	return out
}
