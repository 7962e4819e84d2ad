package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/michalprusek/marianska-sub001/models"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testCatalog() []models.Room {
	return []models.Room{
		{Model: gorm.Model{ID: 12}, Name: "12", BedCount: 2, Floor: 1},
		{Model: gorm.Model{ID: 13}, Name: "13", BedCount: 3, Floor: 1},
		{Model: gorm.Model{ID: 22}, Name: "22", BedCount: 2, Floor: 2},
	}
}

func TestAssembleBookingInheritsSharedDates(t *testing.T) {
	input := CreateBookingInput{
		Name:      "Jana Novakova",
		Email:     "jana@example.com",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-13",
		Rooms: []BookingRoomInput{
			{RoomID: 12, Adults: 2},
			{RoomID: 13, Adults: 1, Children: 1},
		},
	}

	b, err := assembleBooking(input, testCatalog())
	if err != nil {
		t.Fatalf("assembleBooking: %v", err)
	}

	if len(b.Rooms) != 2 {
		t.Fatalf("expected 2 room rows, got %d", len(b.Rooms))
	}
	for _, row := range b.Rooms {
		if !row.StartDate.Equal(d(2025, time.June, 10)) || !row.EndDate.Equal(d(2025, time.June, 13)) {
			t.Fatalf("room %d did not inherit the shared range: %v..%v", row.RoomID, row.StartDate, row.EndDate)
		}
		if row.GuestType != models.GuestTypeUtia {
			t.Fatalf("room %d guest type = %q, want default utia", row.RoomID, row.GuestType)
		}
	}
	if b.GuestType != models.GuestTypeUtia {
		t.Fatalf("booking guest type = %q, want default utia", b.GuestType)
	}
}

func TestAssembleBookingEnvelopeFollowsRoomDates(t *testing.T) {
	input := CreateBookingInput{
		Name:      "Petr Svoboda",
		Email:     "petr@example.com",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
		Rooms: []BookingRoomInput{
			{RoomID: 12, Adults: 2},
			{RoomID: 13, Adults: 1, StartDate: "2025-06-08", EndDate: "2025-06-15"},
		},
	}

	b, err := assembleBooking(input, testCatalog())
	if err != nil {
		t.Fatalf("assembleBooking: %v", err)
	}

	if !b.StartDate.Equal(d(2025, time.June, 8)) {
		t.Fatalf("booking start = %v, want envelope start 2025-06-08", b.StartDate)
	}
	if !b.EndDate.Equal(d(2025, time.June, 15)) {
		t.Fatalf("booking end = %v, want envelope end 2025-06-15", b.EndDate)
	}
}

func TestAssembleBookingRejectsHalfDatedRoom(t *testing.T) {
	input := CreateBookingInput{
		Name:      "x",
		Email:     "x@example.com",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
		Rooms: []BookingRoomInput{
			{RoomID: 12, StartDate: "2025-06-10"},
		},
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a room with only a start date")
	}
}

func TestAssembleBookingRejectsInvertedRange(t *testing.T) {
	input := CreateBookingInput{
		Name:      "x",
		Email:     "x@example.com",
		StartDate: "2025-06-12",
		EndDate:   "2025-06-10",
		Rooms:     []BookingRoomInput{{RoomID: 12}},
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for an inverted range")
	}
}

func TestAssembleBookingRequiresRooms(t *testing.T) {
	input := CreateBookingInput{
		Name:      "x",
		Email:     "x@example.com",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a booking without rooms")
	}
}

func TestAssembleBookingBulkExpandsCatalog(t *testing.T) {
	input := CreateBookingInput{
		Name:      "Institute event",
		Email:     "event@example.com",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-04",
		IsBulk:    true,
		Adults:    6,
		Children:  1,
	}

	b, err := assembleBooking(input, testCatalog())
	if err != nil {
		t.Fatalf("assembleBooking: %v", err)
	}

	if len(b.Rooms) != 3 {
		t.Fatalf("bulk booking expanded to %d rooms, want whole catalog (3)", len(b.Rooms))
	}
	for _, row := range b.Rooms {
		if !row.StartDate.Equal(d(2025, time.September, 1)) || !row.EndDate.Equal(d(2025, time.September, 4)) {
			t.Fatalf("bulk room %d range %v..%v, want shared range", row.RoomID, row.StartDate, row.EndDate)
		}
	}
}

func TestAssembleBookingPhoneHandling(t *testing.T) {
	input := CreateBookingInput{
		Name:      "Jana Novakova",
		Email:     "jana@example.com",
		Phone:     "777 123 456",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
		Rooms:     []BookingRoomInput{{RoomID: 12, Adults: 1}},
	}

	b, err := assembleBooking(input, testCatalog())
	if err != nil {
		t.Fatalf("assembleBooking: %v", err)
	}
	if b.Phone != "420777123456" {
		t.Fatalf("phone stored as %q, want 420777123456", b.Phone)
	}

	input.Phone = "12345"
	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a malformed phone number")
	}

	input.Phone = ""
	if _, err := assembleBooking(input, testCatalog()); err != nil {
		t.Fatalf("a missing phone is allowed: %v", err)
	}
}

func TestAssembleBookingBulkRejectsPartialRooms(t *testing.T) {
	input := CreateBookingInput{
		Name:      "Institute event",
		Email:     "event@example.com",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-04",
		IsBulk:    true,
		Adults:    4,
		Rooms:     []BookingRoomInput{{RoomID: 12, Adults: 2}},
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a bulk booking listing only part of the catalog")
	}

	input.Rooms = []BookingRoomInput{{RoomID: 12}, {RoomID: 13}, {RoomID: 22}}
	b, err := assembleBooking(input, testCatalog())
	if err != nil {
		t.Fatalf("a bulk booking may spell out the full catalog: %v", err)
	}
	if len(b.Rooms) != 3 {
		t.Fatalf("expected 3 room rows, got %d", len(b.Rooms))
	}
}

func TestAssembleBookingBulkCapacity(t *testing.T) {
	// The test catalog sleeps 7.
	input := CreateBookingInput{
		Name:      "x",
		Email:     "x@example.com",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-04",
		IsBulk:    true,
		Adults:    8,
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a bulk booking above house capacity")
	}

	input.Adults = 6
	input.Children = 1
	input.Toddlers = 4
	if _, err := assembleBooking(input, testCatalog()); err != nil {
		t.Fatalf("toddlers must not count against capacity: %v", err)
	}
}

func TestAssembleBookingRejectsForeignGuestRoom(t *testing.T) {
	input := CreateBookingInput{
		Name:      "x",
		Email:     "x@example.com",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
		Rooms:     []BookingRoomInput{{RoomID: 12, Adults: 1}},
		Guests: []GuestInput{
			{RoomID: 22, Name: "Eva", PersonType: models.PersonAdult},
		},
	}

	if _, err := assembleBooking(input, testCatalog()); err == nil {
		t.Fatal("expected error for a guest assigned outside the booking")
	}
}

func TestBookingRoomIDsSorted(t *testing.T) {
	b := &models.Booking{Rooms: []models.BookingRoom{
		{RoomID: 44}, {RoomID: 12}, {RoomID: 23},
	}}

	ids := bookingRoomIDs(b)
	want := []uint{12, 23, 44}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("bookingRoomIDs = %v, want %v", ids, want)
		}
	}
}

func TestAvailabilityRequestCarriesRows(t *testing.T) {
	b := &models.Booking{Rooms: []models.BookingRoom{
		{RoomID: 12, StartDate: d(2025, time.June, 10), EndDate: d(2025, time.June, 12), Adults: 2, Children: 1},
	}}

	req := availabilityRequest(b, 7)
	if req.ExcludeBookingID != 7 {
		t.Fatalf("exclude = %d, want 7", req.ExcludeBookingID)
	}
	if len(req.Rooms) != 1 {
		t.Fatalf("expected 1 room request, got %d", len(req.Rooms))
	}
	rr := req.Rooms[0]
	if rr.RoomID != 12 || rr.Adults != 2 || rr.Children != 1 {
		t.Fatalf("room request did not carry the row: %+v", rr)
	}
	if !rr.StartDate.Equal(d(2025, time.June, 10)) || !rr.EndDate.Equal(d(2025, time.June, 12)) {
		t.Fatalf("room request dates %v..%v", rr.StartDate, rr.EndDate)
	}
}

func TestRecoverTxReportsPanic(t *testing.T) {
	run := func() (err error) {
		tx := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{}}
		defer recoverTx(tx, &err)
		panic("connection reset")
	}

	err := run()
	if err == nil {
		t.Fatal("a mid-transaction panic must surface as an error")
	}
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected a storage failure, got %v", err)
	}
}

func buildBookingTestApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	bookings := app.Party("/api/bookings")
	{
		bookings.Post("/", CreateBooking)
		bookings.Post("/quote", QuoteBookingPrice)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func TestCreateBookingValidatesPayload(t *testing.T) {
	app := buildBookingTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty payload, got %d", resp.Code)
	}
}

func TestQuoteRequiresDates(t *testing.T) {
	app := buildBookingTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/quote", strings.NewReader(`{"adults":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without dates, got %d", resp.Code)
	}
}
