package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/models"
)

type bookingView struct {
	ID            uint `json:"id"`
	Table         uint `json:"catering_establishment_table"`
	IsActive      bool `json:"is_active"`
	IsPaid        bool `json:"is_paid"`
	OrderedDishes []struct {
		Weight            float64 `json:"weight"`
		EstablishmentDish struct {
			ID         uint    `json:"id"`
			FinalPrice float64 `json:"final_price"`
		} `json:"catering_establishment_dish"`
	} `json:"ordered_dishes"`
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	id := env.createEstablishment(t, ownerToken, "Pelmennaya")
	table := env.tables(t, id)[0]

	w := env.do(t, http.MethodPost, "/api/catering_establishment/booking", map[string]interface{}{
		"catering_establishment_table": table.ID,
		"start_datetime":               "2024-01-20T20:00:00Z",
		"end_datetime":                 "2024-01-20T18:00:00Z",
	}, clientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/catering_establishment/booking", map[string]interface{}{
		"catering_establishment_table": 999,
		"start_datetime":               "2024-01-20T18:00:00Z",
		"end_datetime":                 "2024-01-20T20:00:00Z",
	}, clientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/catering_establishment/booking", map[string]interface{}{
		"catering_establishment_table": table.ID,
		"start_datetime":               "2024-01-20T18:00:00Z",
		"end_datetime":                 "2024-01-20T20:00:00Z",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateBookingOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	_, strangerToken := env.user(t, "stranger")
	id := env.createEstablishment(t, ownerToken, "Pelmennaya")
	tables := env.tables(t, id)
	bookingID := env.book(t, clientToken, tables[0].ID)

	path := fmt.Sprintf("/api/catering_establishment/booking/%d", bookingID)
	patch := map[string]interface{}{"catering_establishment_table": tables[1].ID}

	w := env.do(t, http.MethodPatch, path, patch, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var updated struct {
		Table uint `json:"catering_establishment_table"`
	}
	decode(t, env.do(t, http.MethodPatch, path, patch, clientToken), http.StatusOK, &updated)
	assert.Equal(t, tables[1].ID, updated.Table)

	w = env.do(t, http.MethodPut, "/api/catering_establishment/booking/999", patch, clientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayForBooking(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	_, strangerToken := env.user(t, "stranger")
	id := env.createEstablishment(t, ownerToken, "Pelmennaya")
	bookingID := env.book(t, clientToken, env.tables(t, id)[0].ID)

	payment := map[string]interface{}{"booking": bookingID, "amount": 250.5}

	w := env.do(t, http.MethodPost, "/api/catering_establishment/pay_for_booking", payment, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	decode(t, env.do(t, http.MethodPost, "/api/catering_establishment/pay_for_booking", payment, clientToken), http.StatusCreated, nil)

	w = env.do(t, http.MethodPost, "/api/catering_establishment/pay_for_booking", payment, clientToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	var establishment models.Establishment
	require.NoError(t, env.db.First(&establishment, id).Error)
	assert.Equal(t, 250.5, establishment.Balance)
	require.NotNil(t, establishment.LastPaymentAt)
	assert.True(t, establishment.LastPaymentAt.Equal(testNow))

	w = env.do(t, http.MethodPost, "/api/catering_establishment/pay_for_booking", map[string]interface{}{"booking": 999, "amount": 1}, clientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnedBookingsFilters(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	id := env.createEstablishment(t, ownerToken, "Pelmennaya")
	tables := env.tables(t, id)

	upcoming := env.book(t, clientToken, tables[0].ID)
	var past struct {
		ID uint `json:"id"`
	}
	decode(t, env.do(t, http.MethodPost, "/api/catering_establishment/booking", map[string]interface{}{
		"catering_establishment_table": tables[1].ID,
		"start_datetime":               "2024-01-10T18:00:00Z",
		"end_datetime":                 "2024-01-10T20:00:00Z",
	}, clientToken), http.StatusCreated, &past)

	decode(t, env.do(t, http.MethodPost, "/api/catering_establishment/pay_for_booking", map[string]interface{}{
		"booking": past.ID, "amount": 100,
	}, clientToken), http.StatusCreated, nil)

	var all []bookingView
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user", nil, clientToken), http.StatusOK, &all)
	require.Len(t, all, 2)
	assert.Equal(t, past.ID, all[0].ID)
	assert.False(t, all[0].IsActive)
	assert.True(t, all[0].IsPaid)
	assert.True(t, all[1].IsActive)
	assert.False(t, all[1].IsPaid)

	var active []bookingView
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user?active_only=true", nil, clientToken), http.StatusOK, &active)
	require.Len(t, active, 1)
	assert.Equal(t, upcoming, active[0].ID)

	var paid []bookingView
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user?is_paid=true", nil, clientToken), http.StatusOK, &paid)
	require.Len(t, paid, 1)
	assert.Equal(t, past.ID, paid[0].ID)

	var onDate []bookingView
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user?date=2024-01-20", nil, clientToken), http.StatusOK, &onDate)
	require.Len(t, onDate, 1)
	assert.Equal(t, upcoming, onDate[0].ID)

	var byTable []bookingView
	decode(t, env.do(t, http.MethodGet, fmt.Sprintf("/api/catering_establishment/booking/owned_by_user?catering_establishment_table=%d", tables[1].ID), nil, clientToken), http.StatusOK, &byTable)
	require.Len(t, byTable, 1)

	var none []bookingView
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user", nil, ownerToken), http.StatusOK, &none)
	assert.Empty(t, none)

	w := env.do(t, http.MethodGet, "/api/catering_establishment/booking/owned_by_user?date=20-01-2024", nil, clientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingStatistics(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	busy := env.createEstablishment(t, ownerToken, "Busy")
	env.createEstablishment(t, ownerToken, "Quiet")
	tables := env.tables(t, busy)
	env.book(t, clientToken, tables[0].ID)
	env.book(t, clientToken, tables[1].ID)

	var stats []struct {
		ID            uint   `json:"id"`
		Name          string `json:"name"`
		BookingsCount int    `json:"bookings_count"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/statistics?start_date=2024-01-01&end_date=2024-01-31", nil, ownerToken), http.StatusOK, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, busy, stats[0].ID)
	assert.Equal(t, 2, stats[0].BookingsCount)

	decode(t, env.do(t, http.MethodGet, "/api/catering_establishment/statistics?start_date=2024-02-01&end_date=2024-02-28", nil, ownerToken), http.StatusOK, &stats)
	assert.Empty(t, stats)

	w := env.do(t, http.MethodGet, "/api/catering_establishment/statistics?start_date=2024-01-01", nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
