package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

// PayForBooking records the payment; the body was already read by the author check
func (bc *BookingController) PayForBooking(c *gin.Context) {
	var input services.PaymentInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := bc.Bookings.Pay(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment created", payment)
}
