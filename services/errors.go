package services

import (
	"fmt"
	"time"
)

// ConflictError reports the first unavailable night found for one room of
// a request. Exactly one of ConflictingBookingID and BlockageID is set,
// naming what owns the night.
type ConflictError struct {
	RoomID               uint      `json:"roomId"`
	Date                 time.Time `json:"date"`
	ConflictingBookingID uint      `json:"conflictingBookingId,omitempty"`
	BlockageID           uint      `json:"blockageId,omitempty"`
}

func (e *ConflictError) Error() string {
	day := e.Date.Format("2006-01-02")
	if e.BlockageID != 0 {
		return fmt.Sprintf("room %d is blocked on %s (blockage %d)", e.RoomID, day, e.BlockageID)
	}
	return fmt.Sprintf("room %d is already booked on %s (booking %d)", e.RoomID, day, e.ConflictingBookingID)
}

// CapacityError reports a room asked to sleep more guests than it has
// beds. Toddlers do not occupy beds and are not counted.
type CapacityError struct {
	RoomID    uint `json:"roomId"`
	BedCount  int  `json:"bedCount"`
	Requested int  `json:"requested"`
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("room %d sleeps %d, requested %d guests", e.RoomID, e.BedCount, e.Requested)
}

// ConfigurationError reports a rate a calculation needed but found unset.
// Pricing fails loudly instead of quietly billing the missing component
// at zero.
type ConfigurationError struct {
	Field string `json:"field"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rate configuration is missing %s", e.Field)
}
