package services

import (
	"fmt"
	"time"

	"github.com/michalprusek/marianska-sub001/models"
)

// Day occupancy states reported by RoomDayStatus.
const (
	StatusFree    = "free"
	StatusBooked  = "booked"
	StatusBlocked = "blocked"
)

// Snapshot is the consistent state one validation or calendar build runs
// against. Callers load it inside a single transaction and must not mutate
// it while engine functions hold it; the engine itself never touches the
// database.
type Snapshot struct {
	Rooms     []models.Room
	Stays     []models.BookingRoom
	Blockages []models.Blockage
}

// Room finds a catalog entry by id.
func (s Snapshot) Room(id uint) *models.Room {
	for i := range s.Rooms {
		if s.Rooms[i].ID == id {
			return &s.Rooms[i]
		}
	}
	return nil
}

// RoomRequest is one room's slice of a reservation request. Requests that
// share a single range copy it into every entry before validation, so the
// engine always works on uniform per-room rows.
type RoomRequest struct {
	RoomID    uint
	StartDate time.Time
	EndDate   time.Time
	Adults    int
	Children  int
	Toddlers  int
}

// AvailabilityRequest is the room set of a reservation to validate.
// ExcludeBookingID lets an edit re-validate against everything except the
// booking being edited.
type AvailabilityRequest struct {
	Rooms            []RoomRequest
	ExcludeBookingID uint
}

// DayStatus is one (room, night) cell of the occupancy grid.
type DayStatus struct {
	Status     string `json:"status"`
	BookingID  uint   `json:"bookingId,omitempty"`
	BlockageID uint   `json:"blockageId,omitempty"`
}

// RoomDayStatus classifies one room on one night. A blockage wins over a
// booking when both cover the night; bookings confirmed before a blockage
// was created stay valid, the night just reports as blocked.
func RoomDayStatus(snap Snapshot, roomID uint, date time.Time) DayStatus {
	for i := range snap.Blockages {
		if snap.Blockages[i].Covers(roomID, date) {
			return DayStatus{Status: StatusBlocked, BlockageID: snap.Blockages[i].ID}
		}
	}
	for i := range snap.Stays {
		st := &snap.Stays[i]
		if st.RoomID != roomID {
			continue
		}
		if !date.Before(st.StartDate) && date.Before(st.EndDate) {
			return DayStatus{Status: StatusBooked, BookingID: st.BookingID}
		}
	}
	return DayStatus{Status: StatusFree}
}

// ValidateRequest checks every requested room independently against the
// snapshot. Malformed requests (no rooms, inverted ranges, negative
// counts, unknown rooms, capacity overruns) abort with an error before any
// availability scanning; a capacity overrun surfaces as *CapacityError.
// Otherwise the result carries at most one ConflictError per room, the
// first conflicted night found for it. One room's conflict never stops
// the remaining rooms from being checked. An empty result means the whole
// request is acceptable.
func ValidateRequest(snap Snapshot, req AvailabilityRequest) ([]ConflictError, error) {
	if len(req.Rooms) == 0 {
		return nil, fmt.Errorf("request has no rooms")
	}
	seen := make(map[uint]bool, len(req.Rooms))
	for _, rr := range req.Rooms {
		if rr.Adults < 0 || rr.Children < 0 || rr.Toddlers < 0 {
			return nil, fmt.Errorf("room %d has negative guest counts", rr.RoomID)
		}
		if !rr.StartDate.Before(rr.EndDate) {
			return nil, fmt.Errorf("room %d has an empty date range", rr.RoomID)
		}
		if seen[rr.RoomID] {
			return nil, fmt.Errorf("room %d appears twice in one request", rr.RoomID)
		}
		seen[rr.RoomID] = true

		room := snap.Room(rr.RoomID)
		if room == nil {
			return nil, fmt.Errorf("unknown room %d", rr.RoomID)
		}
		if rr.Adults+rr.Children > room.BedCount {
			return nil, &CapacityError{RoomID: rr.RoomID, BedCount: room.BedCount, Requested: rr.Adults + rr.Children}
		}
	}

	var conflicts []ConflictError
	for _, rr := range req.Rooms {
		if c := firstConflict(snap, rr, req.ExcludeBookingID); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	return conflicts, nil
}

// firstConflict walks the nights of one room request in order and stops at
// the first night that is blocked or already occupied. Two stays on the
// same room collide iff s1 < e2 && s2 < e1; walking night by night finds
// the earliest colliding date for the report.
func firstConflict(snap Snapshot, rr RoomRequest, excludeBookingID uint) *ConflictError {
	for d := rr.StartDate; d.Before(rr.EndDate); d = d.AddDate(0, 0, 1) {
		for i := range snap.Blockages {
			if snap.Blockages[i].Covers(rr.RoomID, d) {
				return &ConflictError{RoomID: rr.RoomID, Date: d, BlockageID: snap.Blockages[i].ID}
			}
		}
		for i := range snap.Stays {
			st := &snap.Stays[i]
			if st.RoomID != rr.RoomID {
				continue
			}
			if excludeBookingID != 0 && st.BookingID == excludeBookingID {
				continue
			}
			if !d.Before(st.StartDate) && d.Before(st.EndDate) {
				return &ConflictError{RoomID: rr.RoomID, Date: d, ConflictingBookingID: st.BookingID}
			}
		}
	}
	return nil
}
