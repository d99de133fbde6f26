package database

import (
	"fmt"

	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.Country{},
		&models.Region{},
		&models.Settlement{},
		&models.Address{},
		&models.WorkHours{},
		&models.Establishment{},
		&models.EstablishmentPhoto{},
		&models.EstablishmentRating{},
		&models.EstablishmentFeedback{},
		&models.EstablishmentTable{},
		&models.EstablishmentBalanceChange{},
		&models.DishCategory{},
		&models.DishSubcategory{},
		&models.Food{},
		&models.Dish{},
		&models.EstablishmentDish{},
		&models.Discount{},
		&models.Booking{},
		&models.BookingPayment{},
		&models.OrderedDish{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			utils.ErrorLogger.Errorf("Error migrating %T: %v", m, err)
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	utils.InfoLogger.Infof("Migrated %d models", len(Models()))
	return nil
}
