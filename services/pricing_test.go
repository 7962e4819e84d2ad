package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/michalprusek/marianska-sub001/models"
)

func testRates() models.RateConfig {
	return models.RateConfig{
		Utia:     models.TierRates{Base: 300, Adult: 50, Child: 25},
		External: models.TierRates{Base: 500, Adult: 100, Child: 50},
		Bulk: models.BulkRates{
			BasePrice:     2000,
			UtiaAdult:     100,
			UtiaChild:     50,
			ExternalAdult: 250,
			ExternalChild: 100,
		},
	}
}

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestCalculateSimpleUtiaFamily(t *testing.T) {
	// 2 nights, 1 room, 2 adults, 1 child at the institute tier:
	// 2 x (300 + (2-1)x50 + 1x25) = 750
	got, err := CalculateSimple(testRates(), models.GuestTypeUtia, 2, 1, 0, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 750 {
		t.Fatalf("expected 750, got %v", got)
	}
}

func TestCalculateSimpleToddlersFree(t *testing.T) {
	cfg := testRates()
	without, err := CalculateSimple(cfg, models.GuestTypeExternal, 2, 1, 0, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	with, err := CalculateSimple(cfg, models.GuestTypeExternal, 2, 1, 4, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if with != without {
		t.Fatalf("toddlers changed the price: %v vs %v", with, without)
	}
}

func TestCalculateSimpleIdempotent(t *testing.T) {
	cfg := testRates()
	first, err := CalculateSimple(cfg, models.GuestTypeUtia, 3, 2, 1, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CalculateSimple(cfg, models.GuestTypeUtia, 3, 2, 1, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs priced differently: %v vs %v", first, second)
	}
}

func TestCalculateSimpleRejectsNegativeCounts(t *testing.T) {
	if _, err := CalculateSimple(testRates(), models.GuestTypeUtia, -1, 0, 0, 2, 1); err == nil {
		t.Fatal("expected error for negative adults")
	}
	if _, err := CalculateSimple(testRates(), models.GuestTypeUtia, 2, 0, 0, 0, 1); err == nil {
		t.Fatal("expected error for zero nights")
	}
	if _, err := CalculateSimple(testRates(), models.GuestTypeUtia, 2, 0, 0, 2, 0); err == nil {
		t.Fatal("expected error for zero rooms")
	}
}

func TestCalculateSimpleMissingBaseRate(t *testing.T) {
	cfg := testRates()
	cfg.Utia.Base = 0

	_, err := CalculateSimple(cfg, models.GuestTypeUtia, 2, 0, 0, 2, 1)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if confErr.Field != "utia.base" {
		t.Fatalf("expected field utia.base, got %s", confErr.Field)
	}
}

func TestCalculateSimpleMissingChildRateOnlyWhenNeeded(t *testing.T) {
	cfg := testRates()
	cfg.External.Child = 0

	// No children: the child rate is not needed, must not fail.
	if _, err := CalculateSimple(cfg, models.GuestTypeExternal, 2, 0, 0, 2, 1); err != nil {
		t.Fatalf("unexpected error without children: %v", err)
	}

	_, err := CalculateSimple(cfg, models.GuestTypeExternal, 2, 1, 0, 2, 1)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if confErr.Field != "external.child" {
		t.Fatalf("expected field external.child, got %s", confErr.Field)
	}
}

func TestCalculatePerGuestCompositeSum(t *testing.T) {
	// Room 12 for two nights with one institute adult, room 22 for two
	// nights with two external adults; ranges overlap only partially and
	// the rooms are priced independently.
	rooms := []models.BookingRoom{
		{RoomID: 12, StartDate: d(2025, 6, 10), EndDate: d(2025, 6, 12), Adults: 1},
		{RoomID: 22, StartDate: d(2025, 6, 11), EndDate: d(2025, 6, 13), Adults: 2},
	}
	guests := []models.Guest{
		{RoomID: 12, PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
		{RoomID: 22, PersonType: models.PersonAdult, PriceType: models.GuestTypeExternal},
		{RoomID: 22, PersonType: models.PersonAdult, PriceType: models.GuestTypeExternal},
	}

	total, err := CalculatePerGuest(testRates(), rooms, guests, models.GuestTypeUtia)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Room 12: 2 x 300 = 600, room 22: 2 x (500 + 100) = 1200.
	if total != 1800 {
		t.Fatalf("expected 1800, got %v", total)
	}

	breakdown, err := CalculatePerRoomPrices(testRates(), rooms, guests, models.GuestTypeUtia)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, p := range breakdown {
		sum += p.Subtotal
	}
	if sum != total {
		t.Fatalf("breakdown sums to %v, total is %v", sum, total)
	}
}

func TestCalculatePerRoomPricesComponents(t *testing.T) {
	rooms := []models.BookingRoom{
		{RoomID: 12, StartDate: d(2025, 6, 10), EndDate: d(2025, 6, 12), Adults: 2, Children: 1},
	}
	breakdown, err := CalculatePerRoomPrices(testRates(), rooms, nil, models.GuestTypeUtia)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(breakdown))
	}
	p := breakdown[0]
	if p.GuestType != models.GuestTypeUtia {
		t.Fatalf("expected utia classification, got %s", p.GuestType)
	}
	if p.Nights != 2 {
		t.Fatalf("expected 2 nights, got %d", p.Nights)
	}
	if p.Base != 600 || p.AdultSurcharge != 100 || p.ChildSurcharge != 50 {
		t.Fatalf("unexpected components: base %v adults %v children %v", p.Base, p.AdultSurcharge, p.ChildSurcharge)
	}
	if p.Subtotal != p.Base+p.AdultSurcharge+p.ChildSurcharge {
		t.Fatalf("subtotal %v does not match components", p.Subtotal)
	}
}

func TestClassifyRoomPrecedence(t *testing.T) {
	row := models.BookingRoom{RoomID: 12, GuestType: models.GuestTypeExternal}

	// A single paying institute guest rates the whole room utia.
	guests := []models.Guest{
		{RoomID: 12, PersonType: models.PersonAdult, PriceType: models.GuestTypeExternal},
		{RoomID: 12, PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
	}
	if got := ClassifyRoom(row, guests, models.GuestTypeUtia); got != models.GuestTypeUtia {
		t.Fatalf("expected utia, got %s", got)
	}

	// Paying guests but none institute: external.
	guests = []models.Guest{
		{RoomID: 12, PersonType: models.PersonChild, PriceType: models.GuestTypeExternal},
	}
	if got := ClassifyRoom(row, guests, models.GuestTypeUtia); got != models.GuestTypeExternal {
		t.Fatalf("expected external, got %s", got)
	}

	// Toddlers never pay, so they never classify: stored room tier wins.
	guests = []models.Guest{
		{RoomID: 12, PersonType: models.PersonToddler, PriceType: models.GuestTypeUtia},
	}
	if got := ClassifyRoom(row, guests, models.GuestTypeUtia); got != models.GuestTypeExternal {
		t.Fatalf("expected stored external tier, got %s", got)
	}

	// Nothing else decides: booking fallback.
	row.GuestType = ""
	if got := ClassifyRoom(row, nil, models.GuestTypeUtia); got != models.GuestTypeUtia {
		t.Fatalf("expected fallback utia, got %s", got)
	}
}

func TestCalculateMixedBulkScenario(t *testing.T) {
	// 3 nights, 4 institute adults, 2 external adults:
	// 3 x (2000 + 4x100 + 2x250) = 8700
	got, err := CalculateMixedBulk(testRates(), 4, 2, 0, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8700 {
		t.Fatalf("expected 8700, got %v", got)
	}
}

func TestCalculateMixedBulkBaseInvariance(t *testing.T) {
	cfg := testRates()
	// With every surcharge at 1.0 the base component is the total minus
	// nights x guests; it must equal nights x basePrice at any head count.
	cfg.Bulk.UtiaAdult = 1
	cfg.Bulk.ExternalAdult = 1
	for _, guests := range []struct{ utia, external int }{{1, 0}, {4, 2}, {8, 4}} {
		total, err := CalculateMixedBulk(cfg, guests.utia, guests.external, 0, 0, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		base := total - float64(4*(guests.utia+guests.external))
		if base != 4*2000 {
			t.Fatalf("base component %v with %d guests, expected 8000", base, guests.utia+guests.external)
		}
	}
}

func TestCalculateMixedBulkMissingRates(t *testing.T) {
	cfg := testRates()
	cfg.Bulk.BasePrice = 0
	_, err := CalculateMixedBulk(cfg, 1, 0, 0, 0, 2)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if confErr.Field != "bulk.basePrice" {
		t.Fatalf("expected field bulk.basePrice, got %s", confErr.Field)
	}

	cfg = testRates()
	cfg.Bulk.ExternalAdult = 0
	// Not needed when no external adults stay.
	if _, err := CalculateMixedBulk(cfg, 2, 0, 1, 0, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := CalculateMixedBulk(cfg, 2, 1, 0, 0, 2); err == nil {
		t.Fatal("expected ConfigurationError for missing bulk.externalAdult")
	}
}

func TestCalculateBookingPriceBulkToddlerNeutral(t *testing.T) {
	booking := &models.Booking{
		Model:     gorm.Model{ID: 1},
		StartDate: d(2025, 7, 1),
		EndDate:   d(2025, 7, 4),
		IsBulk:    true,
		Guests: []models.Guest{
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeExternal},
			{PersonType: models.PersonAdult, PriceType: models.GuestTypeExternal},
		},
	}

	base, err := CalculateBookingPrice(testRates(), booking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != 8700 {
		t.Fatalf("expected 8700, got %v", base)
	}

	booking.Guests = append(booking.Guests, models.Guest{PersonType: models.PersonToddler, PriceType: models.GuestTypeExternal})
	with, err := CalculateBookingPrice(testRates(), booking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if with != base {
		t.Fatalf("toddler changed the bulk price: %v vs %v", with, base)
	}
}
