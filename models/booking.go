package models

import "time"

// Booking reserves a table for [StartAt, EndAt]. Activeness and payment status are
// derived at read time and never stored.
type Booking struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	ClientID  uint                `gorm:"not null;index" json:"client"`
	Client    *User               `gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TableID   uint                `gorm:"not null;index" json:"catering_establishment_table"`
	Table     *EstablishmentTable `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	StartAt   time.Time           `gorm:"not null" json:"start_datetime"`
	EndAt     time.Time           `gorm:"not null" json:"end_datetime"`
	CreatedAt time.Time           `gorm:"not null" json:"-"`
	UpdatedAt time.Time           `gorm:"not null" json:"-"`

	Payment       *BookingPayment `gorm:"foreignKey:BookingID" json:"-"`
	OrderedDishes []OrderedDish   `gorm:"foreignKey:BookingID" json:"-"`
}

type BookingPayment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookingID uint      `gorm:"not null;uniqueIndex" json:"booking"`
	Booking   *Booking  `gorm:"foreignKey:BookingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount    float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt    time.Time `gorm:"not null" json:"datetime"`
}

type OrderedDish struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	BookingID           uint               `gorm:"not null;index" json:"booking"`
	Booking             *Booking           `gorm:"foreignKey:BookingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	EstablishmentDishID uint               `gorm:"not null;index" json:"catering_establishment_dish"`
	EstablishmentDish   *EstablishmentDish `gorm:"foreignKey:EstablishmentDishID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Weight              float64            `gorm:"not null" json:"weight"`
}
