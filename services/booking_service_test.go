package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/models"
	"gorm.io/gorm"
)

func TestCreateAndUpdateBooking(t *testing.T) {
	f := newFixture(t)
	e := f.establishment(t, "Cafe")
	tables := f.tables(t, e.ID)
	notifier := &recordingNotifier{}
	svc := NewBookingService(f.db, notifier, clock)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.visitor.ID, BookingInput{Table: tables[0].ID, StartAt: testNow.Add(time.Hour), EndAt: testNow})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, f.visitor.ID, BookingInput{Table: 999, StartAt: testNow, EndAt: testNow.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := svc.Create(ctx, f.visitor.ID, BookingInput{Table: tables[0].ID, StartAt: testNow, EndAt: testNow.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, f.owner.ID, notifier.events[0].UserID)
	assert.Equal(t, EventBookingCreated, notifier.events[0].Event)

	newEnd := testNow.Add(3 * time.Hour)
	updated, err := svc.Update(ctx, b.ID, f.visitor.ID, BookingPatch{Table: &tables[1].ID, EndAt: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, tables[1].ID, updated.TableID)
	assert.True(t, updated.EndAt.Equal(newEnd))

	_, err = svc.Update(ctx, b.ID, f.owner.ID, BookingPatch{EndAt: &newEnd})
	assert.ErrorIs(t, err, ErrForbidden)

	before := testNow.Add(-time.Hour)
	_, err = svc.Update(ctx, b.ID, f.visitor.ID, BookingPatch{EndAt: &before})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayForBooking(t *testing.T) {
	f := newFixture(t)
	e := f.establishment(t, "Cafe")
	b := f.booking(t, f.tables(t, e.ID)[0].ID, testNow, testNow.Add(time.Hour))
	notifier := &recordingNotifier{}
	svc := NewBookingService(f.db, notifier, clock)
	ctx := context.Background()

	payment, err := svc.Pay(ctx, PaymentInput{Booking: b.ID, Amount: 55.5})
	require.NoError(t, err)
	assert.True(t, payment.PaidAt.Equal(testNow))

	var stored models.Establishment
	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.InDelta(t, 55.5, stored.Balance, 1e-9)
	require.NotNil(t, stored.LastPaymentAt)
	assert.True(t, stored.LastPaymentAt.Equal(testNow))

	_, err = svc.Pay(ctx, PaymentInput{Booking: b.ID, Amount: 10})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.InDelta(t, 55.5, stored.Balance, 1e-9, "a rejected payment does not credit the balance")

	var changes int64
	f.db.Model(&models.EstablishmentBalanceChange{}).Where("establishment_id = ?", e.ID).Count(&changes)
	assert.EqualValues(t, 1, changes)

	_, err = svc.Pay(ctx, PaymentInput{Booking: 999, Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventBookingPaid, notifier.events[0].Event)
}

func TestListOwnedBookings(t *testing.T) {
	f := newFixture(t)
	first := f.establishment(t, "First")
	second := f.establishment(t, "Second")
	firstTable := f.tables(t, first.ID)[0]
	secondTable := f.tables(t, second.ID)[0]

	offering := f.offerings(t, first.ID)[0]
	require.NoError(t, f.db.Create(&models.Discount{
		EstablishmentDishID: offering.ID,
		Kind:                "percent",
		Amount:              20,
		ValidFrom:           day(time.January, 1),
		ValidTo:             day(time.January, 31),
	}).Error)

	past := f.booking(t, firstTable.ID, testNow.Add(-48*time.Hour), testNow.Add(-47*time.Hour))
	current := f.booking(t, firstTable.ID, testNow.Add(-time.Hour), testNow.Add(time.Hour))
	other := f.booking(t, secondTable.ID, testNow.Add(24*time.Hour), testNow.Add(25*time.Hour))
	require.NoError(t, f.db.Create(&models.BookingPayment{BookingID: current.ID, Amount: 1, PaidAt: testNow}).Error)
	require.NoError(t, f.db.Create(&models.OrderedDish{BookingID: current.ID, EstablishmentDishID: offering.ID, Weight: 2}).Error)

	svc := NewBookingService(f.db, nil, clock)
	ctx := context.Background()
	ids := func(views []BookingView) []uint {
		out := make([]uint, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	all, err := svc.ListOwned(ctx, f.visitor.ID, BookingFilter{}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{past.ID, current.ID, other.ID}, ids(all))
	assert.False(t, all[0].IsActive)
	assert.True(t, all[1].IsPaid)
	assert.Nil(t, all[1].OrderedDishes)

	active, err := svc.ListOwned(ctx, f.visitor.ID, BookingFilter{ActiveOnly: true}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{current.ID, other.ID}, ids(active))

	unpaid := false
	list, err := svc.ListOwned(ctx, f.visitor.ID, BookingFilter{IsPaid: &unpaid, Establishment: &first.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{past.ID}, ids(list))

	tomorrow := testNow.Add(24 * time.Hour)
	list, err = svc.ListOwned(ctx, f.visitor.ID, BookingFilter{Date: &tomorrow}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{other.ID}, ids(list))

	extended, err := svc.ListOwned(ctx, f.visitor.ID, BookingFilter{Table: &firstTable.ID, ActiveOnly: true}, true)
	require.NoError(t, err)
	require.Len(t, extended, 1)
	assert.Equal(t, first.ID, extended[0].Establishment)
	require.Len(t, extended[0].OrderedDishes, 1)
	assert.InDelta(t, offering.Price*0.8, extended[0].OrderedDishes[0].EstablishmentDish.FinalPrice, 1e-9)

	none, err := svc.ListOwned(ctx, f.owner.ID, BookingFilter{}, true)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingStatistics(t *testing.T) {
	f := newFixture(t)
	busy := f.establishment(t, "Busy")
	quiet := f.establishment(t, "Quiet")
	f.establishment(t, "Empty")

	busyTables := f.tables(t, busy.ID)
	f.booking(t, busyTables[0].ID, day(time.January, 10), day(time.January, 10).Add(time.Hour))
	f.booking(t, busyTables[1].ID, day(time.January, 11), day(time.January, 11).Add(time.Hour))
	f.booking(t, f.tables(t, quiet.ID)[0].ID, day(time.January, 12), day(time.January, 12).Add(time.Hour))
	f.booking(t, busyTables[0].ID, day(time.March, 1), day(time.March, 1).Add(time.Hour))

	stats, err := NewBookingService(f.db, nil, clock).Statistics(context.Background(), f.owner.ID, day(time.January, 1), day(time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, []BookingsCount{
		{ID: busy.ID, Name: "Busy", BookingsCount: 2},
		{ID: quiet.ID, Name: "Quiet", BookingsCount: 1},
	}, stats)
}

func TestPayConcurrentPaymentIsConflict(t *testing.T) {
	f := newFixture(t)
	e := f.establishment(t, "Cafe")
	b := f.booking(t, f.tables(t, e.ID)[0].ID, testNow, testNow.Add(time.Hour))
	notifier := &recordingNotifier{}
	svc := NewBookingService(f.db, notifier, clock)

	// another payment for the same booking commits after the count check
	create := f.db.Callback().Create()
	require.NoError(t, create.Before("gorm:create").Register("concurrent_payment", func(db *gorm.DB) {
		if db.Statement.Table != "booking_payments" {
			return
		}
		_, err := db.Statement.ConnPool.ExecContext(db.Statement.Context,
			"INSERT INTO booking_payments (booking_id, amount, paid_at) VALUES (?, ?, ?)", b.ID, 20.0, testNow)
		if err != nil {
			db.AddError(err)
		}
	}))
	_, err := svc.Pay(context.Background(), PaymentInput{Booking: b.ID, Amount: 10})
	require.NoError(t, create.Remove("concurrent_payment"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, notifier.events)

	var stored models.Establishment
	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.Zero(t, stored.Balance)
}
