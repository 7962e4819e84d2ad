package services

import (
	"fmt"
	"math"
	"time"

	"github.com/michalprusek/marianska-sub001/models"
)

// GroupSummary is the derived view of all bookings sharing a group id.
// Nothing about a group is persisted; it exists exactly as long as it has
// members and dissolves when the last one is deleted.
type GroupSummary struct {
	GroupID    string        `json:"groupId"`
	Bookings   []GroupMember `json:"bookings"`
	TotalPrice float64       `json:"totalPrice"`
	Paid       bool          `json:"paid"`
	StartDate  time.Time     `json:"startDate"`
	EndDate    time.Time     `json:"endDate"`
}

// GroupMember wraps one interval with its freshly recomputed price. The
// stored total rides along so displays can note when it went stale.
type GroupMember struct {
	Booking       models.Booking `json:"booking"`
	CurrentPrice  float64        `json:"currentPrice"`
	StoredPrice   float64        `json:"storedPrice"`
	PriceOutdated bool           `json:"priceOutdated"`
}

// BuildGroup assembles the summary of a group from its members. The total
// is the sum of freshly recomputed member prices, never of stored totals;
// Paid holds only when every member is paid; the span runs from the
// earliest start to the latest end.
func BuildGroup(cfg models.RateConfig, groupID string, members []models.Booking) (*GroupSummary, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("group %s has no members", groupID)
	}
	sum := GroupSummary{GroupID: groupID, Paid: true}
	for i := range members {
		b := &members[i]
		price, err := CalculateBookingPrice(cfg, b)
		if err != nil {
			return nil, fmt.Errorf("booking %d: %w", b.ID, err)
		}
		sum.Bookings = append(sum.Bookings, GroupMember{
			Booking:       *b,
			CurrentPrice:  price,
			StoredPrice:   b.TotalPrice,
			PriceOutdated: PriceOutdated(b.TotalPrice, price),
		})
		sum.TotalPrice += price
		sum.Paid = sum.Paid && b.Paid
		if i == 0 || b.StartDate.Before(sum.StartDate) {
			sum.StartDate = b.StartDate
		}
		if i == 0 || b.EndDate.After(sum.EndDate) {
			sum.EndDate = b.EndDate
		}
	}
	return &sum, nil
}

// PriceOutdated reports whether a stored total no longer matches the
// recomputed one. The mismatch is informational, never an error. Half a
// cent of tolerance absorbs float noise.
func PriceOutdated(stored, current float64) bool {
	return math.Abs(stored-current) > 0.005
}
