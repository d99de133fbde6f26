package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"type:varchar(150);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(150);not null" json:"last_name"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// UserProfile keeps the data that is not needed for authentication.
type UserProfile struct {
	ID       uint           `gorm:"primaryKey" json:"-"`
	UserID   uint           `gorm:"uniqueIndex;not null" json:"-"`
	User     *User          `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Birthday datatypes.Date `gorm:"not null" json:"birthday"`
	Balance  float64        `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Language string         `gorm:"type:varchar(8)" json:"language"`
}
