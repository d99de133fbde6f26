package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/catering-app/models"
)

func TestEvaluateBooking(t *testing.T) {
	at := testNow

	assert.Equal(t, BookingStatus{IsActive: true, IsPaid: false},
		EvaluateBooking(at.Add(-time.Hour), at.Add(time.Hour), false, at))
	assert.Equal(t, BookingStatus{IsActive: true, IsPaid: true},
		EvaluateBooking(at.Add(-time.Hour), at, true, at), "end equal to now is still active")
	assert.Equal(t, BookingStatus{IsActive: false, IsPaid: true},
		EvaluateBooking(at.Add(-2*time.Hour), at.Add(-time.Nanosecond), true, at))
	assert.True(t, EvaluateBooking(at.Add(time.Hour), at.Add(2*time.Hour), false, at).IsActive, "future booking")
}

func TestActiveOnly(t *testing.T) {
	bookings := []models.Booking{
		{ID: 1, StartAt: testNow.Add(-3 * time.Hour), EndAt: testNow.Add(-2 * time.Hour)},
		{ID: 2, StartAt: testNow.Add(-time.Hour), EndAt: testNow},
		{ID: 3, StartAt: testNow.Add(time.Hour), EndAt: testNow.Add(2 * time.Hour), Payment: &models.BookingPayment{}},
	}

	active := ActiveOnly(bookings, testNow)
	if assert.Len(t, active, 2) {
		assert.Equal(t, uint(2), active[0].ID)
		assert.Equal(t, uint(3), active[1].ID)
	}
	assert.True(t, StatusOf(active[1], testNow).IsPaid)
	assert.Empty(t, ActiveOnly(nil, testNow))
}
