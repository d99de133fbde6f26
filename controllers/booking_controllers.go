package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var input services.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := bc.Bookings.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

// UpdateBooking serves PUT and PATCH; absent fields keep their value
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var patch services.BookingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := bc.Bookings.Update(c.Request.Context(), id, currentUser(c), patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

func bookingFilter(c *gin.Context) (services.BookingFilter, error) {
	var (
		f   services.BookingFilter
		err error
	)
	if f.Table, err = queryUint(c, "catering_establishment_table"); err != nil {
		return f, err
	}
	if f.Establishment, err = queryUint(c, "catering_establishment"); err != nil {
		return f, err
	}
	if f.Date, err = queryDate(c, "date"); err != nil {
		return f, err
	}
	if f.IsPaid, err = queryBool(c, "is_paid"); err != nil {
		return f, err
	}
	activeOnly, err := queryBool(c, "active_only")
	if err != nil {
		return f, err
	}
	f.ActiveOnly = activeOnly != nil && *activeOnly
	return f, nil
}

// OwnedByUser lists the current user's bookings, ?extended=true adds ordered dishes
func (bc *BookingController) OwnedByUser(c *gin.Context) {
	filter, err := bookingFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bookings, err := bc.Bookings.ListOwned(c.Request.Context(), currentUser(c), filter, c.Query("extended") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings", bookings)
}

// Statistics counts the owner's bookings per establishment, ?start_date&end_date
func (bc *BookingController) Statistics(c *gin.Context) {
	start, err := queryDate(c, "start_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if start == nil || end == nil {
		respondServiceError(c, invalid("start_date", "start_date and end_date are required"))
		return
	}

	// end_date covers the whole day
	stats, err := bc.Bookings.Statistics(c.Request.Context(), currentUser(c), *start, end.AddDate(0, 0, 1).Add(-1))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings statistics", stats)
}
