package models

import "time"

type DishCategory struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Name          string            `gorm:"type:varchar(32);not null" json:"name"`
	Subcategories []DishSubcategory `gorm:"foreignKey:CategoryID" json:"subcategories"`
}

type DishSubcategory struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"type:varchar(32);not null" json:"name"`
	CategoryID uint          `gorm:"not null;index" json:"category"`
	Category   *DishCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Food struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(32);not null" json:"name"`
}

// Dish is a catalog entry shared by all establishments.
type Dish struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"type:varchar(64);not null" json:"name"`
	FoodID        uint             `gorm:"not null;index" json:"food"`
	Food          *Food            `gorm:"foreignKey:FoodID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SubcategoryID uint             `gorm:"not null;index" json:"subcategory"`
	Subcategory   *DishSubcategory `gorm:"foreignKey:SubcategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// EstablishmentDish is a dish offering: a catalog dish sold by one establishment.
type EstablishmentDish struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EstablishmentID uint           `gorm:"not null;index" json:"catering_establishment"`
	Establishment   *Establishment `gorm:"foreignKey:EstablishmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	DishID          uint           `gorm:"not null;index" json:"dish"`
	Dish            *Dish          `gorm:"foreignKey:DishID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Description     string         `gorm:"type:text" json:"description"`
	Photo           string         `gorm:"type:varchar(255);not null" json:"photo"`
	Price           float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount        *Discount      `gorm:"foreignKey:EstablishmentDishID" json:"discount,omitempty"`
}

// Discount belongs to at most one dish offering. Kind is "percent" or "cash_value".
type Discount struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	EstablishmentDishID uint      `gorm:"not null;uniqueIndex" json:"-"`
	Kind                string    `gorm:"type:varchar(16);not null" json:"type"`
	Amount              float64   `gorm:"not null" json:"amount"`
	ValidFrom           time.Time `gorm:"not null" json:"start_datetime"`
	ValidTo             time.Time `gorm:"not null" json:"end_datetime"`
}
