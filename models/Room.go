package models

import (
	"gorm.io/gorm"
)

// Room is one bookable unit of the guesthouse. The catalog is small and
// static (seeded once), changed only through the admin endpoints.
type Room struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	BedCount int    `json:"bedCount" gorm:"not null;default:2"`
	Floor    int    `json:"floor"`
	Notes    string `json:"notes"`
}
