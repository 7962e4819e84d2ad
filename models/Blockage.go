package models

import (
	"encoding/json"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Blockage is an admin blackout. One row covers the whole date range, so a
// range appears and disappears atomically; there are no per-day rows to
// half-delete. An empty RoomIDs list blocks every room of the property.
type Blockage struct {
	gorm.Model
	StartDate time.Time      `json:"startDate" gorm:"not null;index"`
	EndDate   time.Time      `json:"endDate" gorm:"not null;index"`
	RoomIDs   datatypes.JSON `json:"roomIds"`
	Reason    string         `json:"reason"`
	CreatedBy string         `json:"createdBy"`
}

// RoomIDList decodes the scoped room ids. Nil means the blockage covers
// all rooms.
func (b *Blockage) RoomIDList() []uint {
	if len(b.RoomIDs) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(b.RoomIDs, &ids); err != nil {
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// SetRoomIDs stores the scoped room ids. Pass nil or empty to block the
// whole property.
func (b *Blockage) SetRoomIDs(ids []uint) error {
	if len(ids) == 0 {
		b.RoomIDs = nil
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	b.RoomIDs = datatypes.JSON(raw)
	return nil
}

// Covers reports whether the blockage applies to the room on the night.
// Ranges share the stay semantics of bookings: start inclusive, end
// exclusive, so blocking June 1 to June 3 takes out the nights of
// June 1 and June 2.
func (b *Blockage) Covers(roomID uint, date time.Time) bool {
	if date.Before(b.StartDate) || !date.Before(b.EndDate) {
		return false
	}
	ids := b.RoomIDList()
	if ids == nil {
		return true
	}
	return slices.Contains(ids, roomID)
}
