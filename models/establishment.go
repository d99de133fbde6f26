package models

import (
	"time"

	"gorm.io/datatypes"
)

type WorkHours struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	StartTime datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime   datatypes.Time `gorm:"not null" json:"end_time"`
}

type Establishment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OwnerID       uint       `gorm:"not null;index" json:"owner"`
	Owner         *User      `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name          string     `gorm:"type:varchar(64);not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description"`
	Balance       float64    `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	IsVisible     bool       `gorm:"not null" json:"is_visible"`
	LastPaymentAt *time.Time `json:"last_payment_datetime,omitempty"`
	AddressID     uint       `gorm:"not null" json:"-"`
	Address       Address    `gorm:"foreignKey:AddressID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"address"`
	WorkHoursID   uint       `gorm:"not null" json:"-"`
	WorkHours     WorkHours  `gorm:"foreignKey:WorkHoursID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"work_hours"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`

	Photos  []EstablishmentPhoto  `gorm:"foreignKey:EstablishmentID" json:"photos,omitempty"`
	Tables  []EstablishmentTable  `gorm:"foreignKey:EstablishmentID" json:"tables,omitempty"`
	Dishes  []EstablishmentDish   `gorm:"foreignKey:EstablishmentID" json:"dishes,omitempty"`
	Ratings []EstablishmentRating `gorm:"foreignKey:EstablishmentID" json:"-"`
}

type EstablishmentPhoto struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	EstablishmentID uint   `gorm:"not null;index" json:"catering_establishment"`
	Photo           string `gorm:"type:varchar(255);not null" json:"photo"`
}

// EstablishmentRating is unique per (establishment, visitor); writes go through an upsert.
type EstablishmentRating struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EstablishmentID uint           `gorm:"not null;uniqueIndex:idx_rating_establishment_visitor" json:"catering_establishment"`
	Establishment   *Establishment `gorm:"foreignKey:EstablishmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	VisitorID       uint           `gorm:"not null;uniqueIndex:idx_rating_establishment_visitor" json:"visitor"`
	Visitor         *User          `gorm:"foreignKey:VisitorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Rating          int            `gorm:"not null;default:0" json:"rating"`
}

type EstablishmentFeedback struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EstablishmentID uint           `gorm:"not null;index" json:"catering_establishment"`
	Establishment   *Establishment `gorm:"foreignKey:EstablishmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	VisitorID       uint           `gorm:"not null;index" json:"-"`
	Visitor         User           `gorm:"foreignKey:VisitorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Feedback        string         `gorm:"type:text;not null" json:"feedback"`
	CreatedAt       time.Time      `gorm:"not null" json:"created"`
	UpdatedAt       time.Time      `gorm:"not null" json:"-"`
}

type EstablishmentTable struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	EstablishmentID      uint           `gorm:"not null;index" json:"catering_establishment"`
	Establishment        *Establishment `gorm:"foreignKey:EstablishmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Number               int            `gorm:"not null" json:"number"`
	ServingClientsNumber int            `gorm:"not null" json:"serving_clients_number"`
}

// EstablishmentBalanceChange records every amount credited to an establishment.
type EstablishmentBalanceChange struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EstablishmentID uint      `gorm:"not null;index" json:"catering_establishment"`
	BookingID       *uint     `gorm:"index" json:"booking,omitempty"`
	Amount          float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionAt   time.Time `gorm:"not null" json:"transaction_datetime"`
}
