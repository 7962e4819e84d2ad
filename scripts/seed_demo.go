package main

import (
	"fmt"
	"log"
	"time"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Seeds a demo dataset: two standalone bookings, one two-interval group
// and a maintenance blockage, all a month out from today. Run after the
// server has migrated and seeded the catalog.
func main() {
	storage.InitializeDB()

	var settings models.RateSettings
	if err := storage.DB.First(&settings).Error; err != nil {
		log.Fatalf("rate settings missing, start the server once first: %v", err)
	}
	cfg := settings.Config()

	anchor := utils.Day(time.Now()).AddDate(0, 1, 0)

	family := &models.Booking{
		Name:      "Jana Novakova",
		Email:     "jana.novakova@example.com",
		Phone:     "+420601234567",
		GuestType: models.GuestTypeUtia,
		StartDate: anchor,
		EndDate:   anchor.AddDate(0, 0, 3),
		Rooms: []models.BookingRoom{
			{RoomID: 13, StartDate: anchor, EndDate: anchor.AddDate(0, 0, 3), Adults: 2, Children: 1},
		},
		Guests: []models.Guest{
			{RoomID: 13, Name: "Jana Novakova", PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{RoomID: 13, Name: "Karel Novak", PersonType: models.PersonAdult, PriceType: models.GuestTypeUtia},
			{RoomID: 13, Name: "Eliska Novakova", PersonType: models.PersonChild, PriceType: models.GuestTypeUtia},
		},
	}
	seedBooking(cfg, family)

	couple := &models.Booking{
		Name:      "Thomas Weber",
		Email:     "thomas.weber@example.com",
		GuestType: models.GuestTypeExternal,
		StartDate: anchor.AddDate(0, 0, 7),
		EndDate:   anchor.AddDate(0, 0, 9),
		Rooms: []models.BookingRoom{
			{RoomID: 22, StartDate: anchor.AddDate(0, 0, 7), EndDate: anchor.AddDate(0, 0, 9), Adults: 2, GuestType: models.GuestTypeExternal},
		},
	}
	seedBooking(cfg, couple)

	groupID := utils.GenerateShortToken(8)
	for week := 0; week < 2; week++ {
		start := anchor.AddDate(0, 0, 14+7*week)
		end := start.AddDate(0, 0, 5)
		member := &models.Booking{
			Name:      "Pavel Dvorak",
			Email:     "pavel.dvorak@example.com",
			GuestType: models.GuestTypeUtia,
			GroupID:   groupID,
			StartDate: start,
			EndDate:   end,
			Rooms: []models.BookingRoom{
				{RoomID: 13, StartDate: start, EndDate: end, Adults: 2},
			},
		}
		seedBooking(cfg, member)
	}

	blockage := models.Blockage{
		StartDate: anchor.AddDate(0, 0, 10),
		EndDate:   anchor.AddDate(0, 0, 12),
		Reason:    "Maintenance: heating inspection",
		CreatedBy: "seed",
	}
	if err := blockage.SetRoomIDs([]uint{42, 43, 44}); err != nil {
		log.Fatalf("blockage rooms: %v", err)
	}
	if err := storage.DB.Create(&blockage).Error; err != nil {
		log.Fatalf("seeding blockage: %v", err)
	}
	fmt.Printf("✅ seeded blockage %d (%s)\n", blockage.ID, blockage.Reason)

	fmt.Println("Demo data seeded 🎉")
}

func seedBooking(cfg models.RateConfig, b *models.Booking) {
	price, err := services.CalculateBookingPrice(cfg, b)
	if err != nil {
		log.Fatalf("pricing %s: %v", b.Name, err)
	}
	b.TotalPrice = price
	b.EditToken = utils.GenerateShortToken(16)

	if err := storage.DB.Create(b).Error; err != nil {
		log.Fatalf("seeding booking for %s: %v", b.Name, err)
	}
	fmt.Printf("✅ seeded booking %d for %s (%.0f CZK)\n", b.ID, b.Name, b.TotalPrice)
}
