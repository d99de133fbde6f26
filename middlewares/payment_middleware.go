package middlewares

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yeremiapane/catering-app/utils"
	"golang.org/x/time/rate"
)

// PaymentSecurityHeaders keeps payment responses out of caches
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// PaymentRateLimiter bounds the payment throughput of the whole process
func PaymentRateLimiter(every time.Duration, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(every), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("please wait before making another payment request"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ValidatePaymentRequest checks the payment body before the booking is touched. The body
// is cached by ShouldBindBodyWith so the handler can bind it again.
func ValidatePaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Booking uint     `json:"booking" binding:"required"`
			Amount  *float64 `json:"amount" binding:"required,gte=0"`
		}

		if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			c.Abort()
			return
		}

		// at most 2 decimal places
		cents := *request.Amount * 100
		if math.Abs(cents-math.Round(cents)) > 1e-6 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("amount must have at most 2 decimal places"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// LogPaymentRequest logs every payment attempt with its outcome
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		userID, _ := UserID(c)

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		if status == http.StatusCreated {
			utils.InfoLogger.Printf("Payment accepted - User: %d, Status: %d, Duration: %v", userID, status, duration)
		} else {
			utils.ErrorLogger.Printf("Payment rejected - User: %d, Status: %d, Duration: %v", userID, status, duration)
		}
	}
}
