package storage

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/michalprusek/marianska-sub001/models"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.Room{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.Guest{},
		&models.Blockage{},
		&models.RateSettings{},
		&models.AuditLog{},
	)
}

// seedDefaults creates the fixed room catalog and the initial rate row on
// first start. Room numbers encode floor and size: the first digit is the
// floor, the second the bed count.
func seedDefaults(db *gorm.DB) {
	var roomCount int64
	db.Model(&models.Room{}).Count(&roomCount)
	if roomCount == 0 {
		rooms := []models.Room{
			{Model: gorm.Model{ID: 12}, Name: "12", BedCount: 2, Floor: 1},
			{Model: gorm.Model{ID: 13}, Name: "13", BedCount: 3, Floor: 1},
			{Model: gorm.Model{ID: 14}, Name: "14", BedCount: 4, Floor: 1},
			{Model: gorm.Model{ID: 22}, Name: "22", BedCount: 2, Floor: 2},
			{Model: gorm.Model{ID: 23}, Name: "23", BedCount: 3, Floor: 2},
			{Model: gorm.Model{ID: 24}, Name: "24", BedCount: 4, Floor: 2},
			{Model: gorm.Model{ID: 42}, Name: "42", BedCount: 2, Floor: 4},
			{Model: gorm.Model{ID: 43}, Name: "43", BedCount: 3, Floor: 4},
			{Model: gorm.Model{ID: 44}, Name: "44", BedCount: 4, Floor: 4},
		}
		if err := db.Create(&rooms).Error; err != nil {
			log.Println("Failed to seed room catalog:", err)
		} else {
			log.Println("Seeded room catalog 🏠")
		}
	}

	var settings models.RateSettings
	if err := db.First(&settings).Error; err != nil {
		hash := ""
		if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
			if h, hashErr := bcrypt.GenerateFromPassword([]byte(pw), 14); hashErr == nil {
				hash = string(h)
			}
		}
		defaults := models.RateSettings{
			UtiaBase:          300,
			UtiaAdult:         50,
			UtiaChild:         25,
			ExternalBase:      500,
			ExternalAdult:     100,
			ExternalChild:     50,
			BulkBasePrice:     2000,
			BulkUtiaAdult:     100,
			BulkUtiaChild:     50,
			BulkExternalAdult: 250,
			BulkExternalChild: 100,
			AdminPasswordHash: hash,
			ContactEmail:      os.Getenv("ADMIN_EMAIL"),
		}
		if err := db.Create(&defaults).Error; err != nil {
			log.Println("Failed to seed rate settings:", err)
		} else {
			log.Println("Seeded default rate settings 💰")
		}
	}
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	seedDefaults(db)
	return db
}
