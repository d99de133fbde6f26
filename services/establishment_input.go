package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yeremiapane/catering-app/models"
	"gorm.io/datatypes"
)

const (
	EstablishmentNameMaxLength = 64
	CatalogDescriptionLength   = 200
)

type AddressInput struct {
	Name       string `json:"name" binding:"required"`
	Settlement uint   `json:"settlement" binding:"required"`
}

// WorkHoursInput carries clock times as "HH:MM" or "HH:MM:SS".
type WorkHoursInput struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type TableInput struct {
	Number               int `json:"number" binding:"required"`
	ServingClientsNumber int `json:"serving_clients_number" binding:"required"`
}

type DiscountInput struct {
	Kind    string    `json:"type" binding:"required"`
	Amount  float64   `json:"amount"`
	StartAt time.Time `json:"start_datetime" binding:"required"`
	EndAt   time.Time `json:"end_datetime" binding:"required"`
}

// DishOfferingInput describes a catalog dish served by the establishment. Photo is a
// base64 data URI.
type DishOfferingInput struct {
	Dish        uint           `json:"dish" binding:"required"`
	Description string         `json:"description"`
	Photo       string         `json:"photo" binding:"required"`
	Price       float64        `json:"price"`
	Discount    *DiscountInput `json:"discount"`
}

// EstablishmentInput is the nested payload of create_new and update.
type EstablishmentInput struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	IsVisible   *bool               `json:"is_visible"`
	Address     AddressInput        `json:"address" binding:"required"`
	WorkHours   WorkHoursInput      `json:"work_hours" binding:"required"`
	Photos      []string            `json:"photos"`
	Tables      []TableInput        `json:"tables"`
	Dishes      []DishOfferingInput `json:"dishes"`
}

func (in DiscountInput) model() models.Discount {
	return models.Discount{
		Kind:      in.Kind,
		Amount:    in.Amount,
		ValidFrom: in.StartAt,
		ValidTo:   in.EndAt,
	}
}

// parseClock reads "HH:MM" or "HH:MM:SS" into a time-of-day value.
func parseClock(field, raw string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, newValidation(field, "expected HH:MM or HH:MM:SS, got %q", raw)
}

func (in WorkHoursInput) model() (models.WorkHours, error) {
	start, err := parseClock("work_hours.start_time", in.StartTime)
	if err != nil {
		return models.WorkHours{}, err
	}
	end, err := parseClock("work_hours.end_time", in.EndTime)
	if err != nil {
		return models.WorkHours{}, err
	}
	return models.WorkHours{StartTime: start, EndTime: end}, nil
}

// validate checks everything that does not need the database.
func (in EstablishmentInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > EstablishmentNameMaxLength {
		return newValidation("name", "must be between 1 and %d characters", EstablishmentNameMaxLength)
	}
	if strings.TrimSpace(in.Address.Name) == "" {
		return newValidation("address.name", "is required")
	}
	if _, err := in.WorkHours.model(); err != nil {
		return err
	}

	for i, photo := range in.Photos {
		if _, _, err := ValidateEncoded(photo); err != nil {
			return newValidation(fmt.Sprintf("photos[%d]", i), "provided encoded data has incorrect format")
		}
	}

	numbers := make(map[int]bool, len(in.Tables))
	for i, t := range in.Tables {
		if t.Number <= 0 || t.ServingClientsNumber <= 0 {
			return newValidation(fmt.Sprintf("tables[%d]", i), "number and serving_clients_number must be positive")
		}
		if numbers[t.Number] {
			return newValidation(fmt.Sprintf("tables[%d].number", i), "duplicate table number %d", t.Number)
		}
		numbers[t.Number] = true
	}

	for i, d := range in.Dishes {
		if d.Price < 0 {
			return newValidation(fmt.Sprintf("dishes[%d].price", i), "must not be negative")
		}
		if _, _, err := ValidateEncoded(d.Photo); err != nil {
			return newValidation(fmt.Sprintf("dishes[%d].photo", i), "provided encoded data has incorrect format")
		}
		if d.Discount != nil {
			discount := d.Discount.model()
			if err := ValidateDiscount(d.Price, &discount); err != nil {
				return err
			}
		}
	}
	return nil
}
