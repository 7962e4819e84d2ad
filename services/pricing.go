package services

import (
	"fmt"

	"github.com/michalprusek/marianska-sub001/models"
)

// The calculator is pure: rates arrive as an explicit RateConfig snapshot,
// never from package state, so identical inputs always price identically.
// Stored booking totals are historical and are never an input here.

// RoomPrice is one room's line of a composite breakdown. The authoritative
// total of a composite booking is exactly the sum of the subtotals.
type RoomPrice struct {
	RoomID         uint    `json:"roomId"`
	GuestType      string  `json:"guestType"`
	Nights         int     `json:"nights"`
	Base           float64 `json:"base"`
	AdultSurcharge float64 `json:"adultSurcharge"`
	ChildSurcharge float64 `json:"childSurcharge"`
	Subtotal       float64 `json:"subtotal"`
}

// CalculateSimple prices a stay of one or more identically-dated rooms for
// a single guest tier. Each room's base rate bundles one adult; every
// adult beyond one per room pays the marginal adult rate, children pay the
// child rate, toddlers stay free.
func CalculateSimple(cfg models.RateConfig, guestType string, adults, children, toddlers, nights, roomCount int) (float64, error) {
	if adults < 0 || children < 0 || toddlers < 0 {
		return 0, fmt.Errorf("guest counts cannot be negative (%d adults, %d children, %d toddlers)", adults, children, toddlers)
	}
	if nights <= 0 {
		return 0, fmt.Errorf("nights must be positive, got %d", nights)
	}
	if roomCount <= 0 {
		return 0, fmt.Errorf("room count must be positive, got %d", roomCount)
	}

	tierName := normalizeTier(guestType)
	tier := cfg.Tier(tierName)
	if err := requireRate(tier.Base, tierName+".base"); err != nil {
		return 0, err
	}
	extraAdults := adults - roomCount
	if extraAdults != 0 {
		if err := requireRate(tier.Adult, tierName+".adult"); err != nil {
			return 0, err
		}
	}
	if children > 0 {
		if err := requireRate(tier.Child, tierName+".child"); err != nil {
			return 0, err
		}
	}

	perNight := float64(roomCount)*tier.Base +
		float64(extraAdults)*tier.Adult +
		float64(children)*tier.Child
	return float64(nights) * perNight, nil
}

// CalculatePerGuest prices a composite booking: each room is classified
// and priced on its own dates and guest counts, and the rooms are summed
// with no cross-room discount.
func CalculatePerGuest(cfg models.RateConfig, rooms []models.BookingRoom, guests []models.Guest, fallbackGuestType string) (float64, error) {
	prices, err := CalculatePerRoomPrices(cfg, rooms, guests, fallbackGuestType)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range prices {
		total += p.Subtotal
	}
	return total, nil
}

// CalculatePerRoomPrices is the itemized form of CalculatePerGuest: one
// entry per room with the rate components split out for display and audit.
func CalculatePerRoomPrices(cfg models.RateConfig, rooms []models.BookingRoom, guests []models.Guest, fallbackGuestType string) ([]RoomPrice, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("booking has no rooms")
	}
	prices := make([]RoomPrice, 0, len(rooms))
	for i := range rooms {
		row := &rooms[i]
		guestType := ClassifyRoom(*row, guests, fallbackGuestType)
		nights := row.Nights()

		subtotal, err := CalculateSimple(cfg, guestType, row.Adults, row.Children, row.Toddlers, nights, 1)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", row.RoomID, err)
		}

		tier := cfg.Tier(normalizeTier(guestType))
		base := float64(nights) * tier.Base
		adultSurcharge := float64(nights) * float64(row.Adults-1) * tier.Adult
		childSurcharge := float64(nights) * float64(row.Children) * tier.Child
		prices = append(prices, RoomPrice{
			RoomID:         row.RoomID,
			GuestType:      normalizeTier(guestType),
			Nights:         nights,
			Base:           base,
			AdultSurcharge: adultSurcharge,
			ChildSurcharge: childSurcharge,
			Subtotal:       subtotal,
		})
	}
	return prices, nil
}

// CalculateMixedBulk prices a whole-property booking: one nightly base for
// the building regardless of head count, plus per-person surcharges by
// tier. Toddlers are excluded from every term.
func CalculateMixedBulk(cfg models.RateConfig, utiaAdults, externalAdults, utiaChildren, externalChildren, nights int) (float64, error) {
	if utiaAdults < 0 || externalAdults < 0 || utiaChildren < 0 || externalChildren < 0 {
		return 0, fmt.Errorf("guest counts cannot be negative")
	}
	if nights <= 0 {
		return 0, fmt.Errorf("nights must be positive, got %d", nights)
	}

	b := cfg.Bulk
	if err := requireRate(b.BasePrice, "bulk.basePrice"); err != nil {
		return 0, err
	}
	if utiaAdults > 0 {
		if err := requireRate(b.UtiaAdult, "bulk.utiaAdult"); err != nil {
			return 0, err
		}
	}
	if externalAdults > 0 {
		if err := requireRate(b.ExternalAdult, "bulk.externalAdult"); err != nil {
			return 0, err
		}
	}
	if utiaChildren > 0 {
		if err := requireRate(b.UtiaChild, "bulk.utiaChild"); err != nil {
			return 0, err
		}
	}
	if externalChildren > 0 {
		if err := requireRate(b.ExternalChild, "bulk.externalChild"); err != nil {
			return 0, err
		}
	}

	perNight := b.BasePrice +
		float64(utiaAdults)*b.UtiaAdult +
		float64(externalAdults)*b.ExternalAdult +
		float64(utiaChildren)*b.UtiaChild +
		float64(externalChildren)*b.ExternalChild
	return float64(nights) * perNight, nil
}

// CalculateBookingPrice recomputes the authoritative price of a booking
// against the given rates. Every display and persistence path goes
// through here.
func CalculateBookingPrice(cfg models.RateConfig, b *models.Booking) (float64, error) {
	if b.IsBulk {
		comp := BulkComposition(b)
		return CalculateMixedBulk(cfg, comp.UtiaAdults, comp.ExternalAdults, comp.UtiaChildren, comp.ExternalChildren, b.Nights())
	}
	return CalculatePerGuest(cfg, b.Rooms, b.Guests, b.GuestType)
}

// ClassifyRoom picks the price tier of one room. Precedence: any paying
// institute guest in the room rates it utia; else any paying guest with
// an explicit tier rates it external; else the row's stored tier; else
// the booking fallback. Every caller classifying a room goes through
// here so the answer never depends on the call site.
func ClassifyRoom(row models.BookingRoom, guests []models.Guest, fallbackGuestType string) string {
	hasPaying := false
	for i := range guests {
		g := &guests[i]
		if g.RoomID != row.RoomID || !g.Paying() || g.PriceType == "" {
			continue
		}
		if g.PriceType == models.GuestTypeUtia {
			return models.GuestTypeUtia
		}
		hasPaying = true
	}
	if hasPaying {
		return models.GuestTypeExternal
	}
	if row.GuestType != "" {
		return row.GuestType
	}
	return fallbackGuestType
}

// BulkGuests is the per-tier composition of a whole-property booking.
type BulkGuests struct {
	UtiaAdults       int
	ExternalAdults   int
	UtiaChildren     int
	ExternalChildren int
}

// BulkComposition derives the per-tier guest counts of a bulk booking from
// its guest records, falling back to the booking-level totals classified
// by the booking's own tier when no records were captured. Toddlers are
// not counted.
func BulkComposition(b *models.Booking) BulkGuests {
	var c BulkGuests
	if len(b.Guests) == 0 {
		if normalizeTier(b.GuestType) == models.GuestTypeUtia {
			c.UtiaAdults = b.Adults
			c.UtiaChildren = b.Children
		} else {
			c.ExternalAdults = b.Adults
			c.ExternalChildren = b.Children
		}
		return c
	}
	for i := range b.Guests {
		g := &b.Guests[i]
		utia := g.PriceType == models.GuestTypeUtia
		switch g.PersonType {
		case models.PersonAdult:
			if utia {
				c.UtiaAdults++
			} else {
				c.ExternalAdults++
			}
		case models.PersonChild:
			if utia {
				c.UtiaChildren++
			} else {
				c.ExternalChildren++
			}
		}
	}
	return c
}

// requireRate refuses zero or negative rates. An unset column reads as
// zero, and silently pricing a component at nothing is a worse failure
// than a visible error.
func requireRate(rate float64, field string) error {
	if rate <= 0 {
		return &ConfigurationError{Field: field}
	}
	return nil
}

func normalizeTier(guestType string) string {
	if guestType == models.GuestTypeUtia {
		return models.GuestTypeUtia
	}
	return models.GuestTypeExternal
}
