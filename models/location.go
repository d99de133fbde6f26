package models

import "fmt"

type Country struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(64);not null" json:"name"`
}

type Region struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"type:varchar(64);not null" json:"name"`
	CountryID uint     `gorm:"not null;index" json:"country"`
	Country   *Country `gorm:"foreignKey:CountryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Settlement struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"type:varchar(64);not null" json:"name"`
	RegionID uint    `gorm:"not null;index" json:"region"`
	Region   *Region `gorm:"foreignKey:RegionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Address struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(256);not null" json:"name"`
	SettlementID uint        `gorm:"not null;index" json:"settlement"`
	Settlement   *Settlement `gorm:"foreignKey:SettlementID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// String renders "country, region, settlement, street". Missing parents are skipped,
// so callers should preload Settlement.Region.Country when they need the full form.
func (a Address) String() string {
	s := a.Settlement
	if s == nil {
		return a.Name
	}
	if s.Region == nil {
		return fmt.Sprintf("%s, %s", s.Name, a.Name)
	}
	if s.Region.Country == nil {
		return fmt.Sprintf("%s, %s, %s", s.Region.Name, s.Name, a.Name)
	}
	return fmt.Sprintf("%s, %s, %s, %s", s.Region.Country.Name, s.Region.Name, s.Name, a.Name)
}
