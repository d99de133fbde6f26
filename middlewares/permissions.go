package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated  = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// Check decides whether the request may reach its handler. It returns nil to allow,
// ErrUnauthenticated, ErrPermissionDenied or a services.NotFoundError.
type Check func(c *gin.Context, db *gorm.DB) error

// Policy maps an operation name to the checks that must all pass.
type Policy map[string][]Check

// Guard builds the middleware for one operation. Operations missing from the policy
// are a wiring mistake and panic at startup.
func (p Policy) Guard(db *gorm.DB, operation string) gin.HandlerFunc {
	checks, ok := p[operation]
	if !ok {
		panic(fmt.Sprintf("no permission policy for operation %q", operation))
	}

	return func(c *gin.Context) {
		for _, check := range checks {
			if err := check(c, db); err != nil {
				utils.RespondError(c, permissionStatus(err), err)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func permissionStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func AllowAny(*gin.Context, *gorm.DB) error { return nil }

func Authenticated(c *gin.Context, _ *gorm.DB) error {
	if _, ok := UserID(c); !ok {
		return ErrUnauthenticated
	}
	return nil
}

// AnyOf passes when at least one check passes. The last error is returned otherwise.
func AnyOf(checks ...Check) Check {
	return func(c *gin.Context, db *gorm.DB) error {
		var err error
		for _, check := range checks {
			if err = check(c, db); err == nil {
				return nil
			}
		}
		return err
	}
}

func pathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		return 0, &services.ValidationError{Field: param, Message: "must be a positive integer"}
	}
	return uint(id), nil
}

func loadEstablishment(c *gin.Context, db *gorm.DB, param string) (*models.Establishment, error) {
	id, err := pathID(c, param)
	if err != nil {
		return nil, err
	}
	var establishment models.Establishment
	if err := db.WithContext(c.Request.Context()).Select("id", "owner_id", "is_visible").First(&establishment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Entity: "catering establishment", ID: id}
		}
		return nil, err
	}
	return &establishment, nil
}

// EstablishmentOwner allows the owner of the establishment named by the path parameter.
func EstablishmentOwner(param string) Check {
	return func(c *gin.Context, db *gorm.DB) error {
		userID, ok := UserID(c)
		if !ok {
			return ErrUnauthenticated
		}
		establishment, err := loadEstablishment(c, db, param)
		if err != nil {
			return err
		}
		if establishment.OwnerID != userID {
			return ErrPermissionDenied
		}
		return nil
	}
}

// EstablishmentVisible allows anyone to see an establishment marked visible.
func EstablishmentVisible(param string) Check {
	return func(c *gin.Context, db *gorm.DB) error {
		establishment, err := loadEstablishment(c, db, param)
		if err != nil {
			return err
		}
		if !establishment.IsVisible {
			return ErrPermissionDenied
		}
		return nil
	}
}

func checkBookingAuthor(c *gin.Context, db *gorm.DB, bookingID uint) error {
	userID, ok := UserID(c)
	if !ok {
		return ErrUnauthenticated
	}
	var booking models.Booking
	if err := db.WithContext(c.Request.Context()).Select("id", "client_id").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &services.NotFoundError{Entity: "booking", ID: bookingID}
		}
		return err
	}
	if booking.ClientID != userID {
		return ErrPermissionDenied
	}
	return nil
}

// BookingAuthor allows the client of the booking referenced by ?booking= on GET or by
// the "booking" field of the JSON body otherwise. The body stays readable for the
// handler through ShouldBindBodyWith.
func BookingAuthor(c *gin.Context, db *gorm.DB) error {
	var bookingID uint
	if c.Request.Method == http.MethodGet {
		id, err := strconv.ParseUint(c.Query("booking"), 10, 64)
		if err != nil {
			return &services.ValidationError{Field: "booking", Message: "must be a positive integer"}
		}
		bookingID = uint(id)
	} else {
		var body struct {
			Booking uint `json:"booking"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.Booking == 0 {
			return &services.ValidationError{Field: "booking", Message: "is required"}
		}
		bookingID = body.Booking
	}
	return checkBookingAuthor(c, db, bookingID)
}

// BookingAuthorParam allows the client of the booking named by the path parameter.
func BookingAuthorParam(param string) Check {
	return func(c *gin.Context, db *gorm.DB) error {
		id, err := pathID(c, param)
		if err != nil {
			return err
		}
		return checkBookingAuthor(c, db, id)
	}
}
