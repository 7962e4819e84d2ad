package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/michalprusek/marianska-sub001/models"
)

func groupMember(id uint, roomID uint, start, end time.Time, adults int, stored float64, paid bool) models.Booking {
	return models.Booking{
		Model:      gorm.Model{ID: id},
		Name:       "Jana Novotná",
		Email:      "jana@example.com",
		StartDate:  start,
		EndDate:    end,
		GroupID:    "grp1",
		GuestType:  models.GuestTypeUtia,
		TotalPrice: stored,
		Paid:       paid,
		Rooms: []models.BookingRoom{
			{BookingID: id, RoomID: roomID, StartDate: start, EndDate: end, Adults: adults},
		},
	}
}

func TestBuildGroupRecomputesTotals(t *testing.T) {
	// Three intervals at the institute tier: 2x350, 2x300 and 3x350.
	// The second member carries a stale stored total which must be
	// flagged but never summed.
	members := []models.Booking{
		groupMember(1, 12, d(2025, 6, 1), d(2025, 6, 3), 2, 700, true),
		groupMember(2, 22, d(2025, 6, 10), d(2025, 6, 12), 1, 9999, true),
		groupMember(3, 12, d(2025, 6, 20), d(2025, 6, 23), 2, 1050, true),
	}

	sum, err := BuildGroup(testRates(), "grp1", members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.TotalPrice != 700+600+1050 {
		t.Fatalf("expected 2350, got %v", sum.TotalPrice)
	}
	if len(sum.Bookings) != 3 {
		t.Fatalf("expected 3 members, got %d", len(sum.Bookings))
	}
	if !sum.Bookings[1].PriceOutdated {
		t.Fatal("stale stored price was not flagged")
	}
	if sum.Bookings[0].PriceOutdated || sum.Bookings[2].PriceOutdated {
		t.Fatal("accurate stored prices were flagged as stale")
	}
	if sum.Bookings[1].CurrentPrice != 600 || sum.Bookings[1].StoredPrice != 9999 {
		t.Fatalf("unexpected member prices: %+v", sum.Bookings[1])
	}
}

func TestBuildGroupEditIsolation(t *testing.T) {
	// Editing the third interval re-prices only it; the other members'
	// contributions stay exactly what they were.
	members := []models.Booking{
		groupMember(1, 12, d(2025, 6, 1), d(2025, 6, 3), 2, 700, true),
		groupMember(2, 22, d(2025, 6, 10), d(2025, 6, 12), 1, 600, true),
		groupMember(3, 12, d(2025, 6, 20), d(2025, 6, 23), 2, 1050, true),
	}

	before, err := BuildGroup(testRates(), "grp1", members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The edit extends the third interval by one night.
	members[2].EndDate = d(2025, 6, 24)
	members[2].Rooms[0].EndDate = d(2025, 6, 24)

	after, err := BuildGroup(testRates(), "grp1", members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Bookings[0].CurrentPrice != before.Bookings[0].CurrentPrice {
		t.Fatal("sibling 1 was re-priced by an edit of member 3")
	}
	if after.Bookings[1].CurrentPrice != before.Bookings[1].CurrentPrice {
		t.Fatal("sibling 2 was re-priced by an edit of member 3")
	}
	if after.TotalPrice != before.TotalPrice-1050+1400 {
		t.Fatalf("expected total %v, got %v", before.TotalPrice-1050+1400, after.TotalPrice)
	}
}

func TestBuildGroupShrinksToOneMember(t *testing.T) {
	members := []models.Booking{
		groupMember(1, 12, d(2025, 6, 1), d(2025, 6, 3), 2, 700, false),
		groupMember(2, 22, d(2025, 6, 10), d(2025, 6, 12), 1, 600, false),
	}

	// Deleting one interval leaves a valid single-member group.
	remaining := members[:1]
	sum, err := BuildGroup(testRates(), "grp1", remaining)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Bookings) != 1 {
		t.Fatalf("expected 1 member, got %d", len(sum.Bookings))
	}
	if sum.TotalPrice != 700 {
		t.Fatalf("expected 700, got %v", sum.TotalPrice)
	}
}

func TestBuildGroupPaidAndSpan(t *testing.T) {
	members := []models.Booking{
		groupMember(1, 12, d(2025, 6, 20), d(2025, 6, 23), 2, 1050, true),
		groupMember(2, 22, d(2025, 6, 1), d(2025, 6, 3), 1, 600, false),
	}

	sum, err := BuildGroup(testRates(), "grp1", members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Paid {
		t.Fatal("group with an unpaid member reported as paid")
	}
	if !sum.StartDate.Equal(d(2025, 6, 1)) || !sum.EndDate.Equal(d(2025, 6, 23)) {
		t.Fatalf("unexpected span %s .. %s", sum.StartDate.Format("2006-01-02"), sum.EndDate.Format("2006-01-02"))
	}

	members[1].Paid = true
	sum, err = BuildGroup(testRates(), "grp1", members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Paid {
		t.Fatal("fully paid group reported as unpaid")
	}
}

func TestBuildGroupEmpty(t *testing.T) {
	if _, err := BuildGroup(testRates(), "grp1", nil); err == nil {
		t.Fatal("expected error for empty group")
	}
}
