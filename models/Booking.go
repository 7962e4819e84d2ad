package models

import (
	"time"

	"gorm.io/gorm"
)

// Guest price tiers. Institute guests pay the discounted rates, everyone
// else pays the external rates.
const (
	GuestTypeUtia     = "utia"
	GuestTypeExternal = "external"
)

// Person types for individual guests. Toddlers occupy no bed and are
// never charged.
const (
	PersonAdult   = "adult"
	PersonChild   = "child"
	PersonToddler = "toddler"
)

// Booking is one reserved date interval. A multi-interval reservation is a
// set of bookings sharing a GroupID; each member stays independently
// editable and deletable.
type Booking struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null;index"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	ICO     string `json:"ico"`
	DIC     string `json:"dic"`

	StartDate time.Time `json:"startDate" gorm:"not null;index"`
	EndDate   time.Time `json:"endDate" gorm:"not null;index"`

	// GroupID ties sibling intervals together. Empty for standalone bookings.
	GroupID string `json:"groupId" gorm:"index"`

	// IsBulk marks a whole-property booking. Always explicit, never derived
	// from the number of rooms.
	IsBulk bool `json:"isBulk" gorm:"default:false"`

	// GuestType is the booking-level fallback tier used when neither the
	// guest records nor the room rows decide one.
	GuestType string `json:"guestType" gorm:"default:'utia'"`

	// Totals for bulk bookings (per-room breakdown is meaningless there).
	Adults   int `json:"adults" gorm:"default:0"`
	Children int `json:"children" gorm:"default:0"`
	Toddlers int `json:"toddlers" gorm:"default:0"`

	// TotalPrice is the price computed when the booking was written. It is
	// historical: display paths recompute against current rates and surface
	// a mismatch note when the two differ.
	TotalPrice float64 `json:"totalPrice"`

	Paid           bool   `json:"paid" gorm:"default:false"`
	PayFromBenefit bool   `json:"payFromBenefit" gorm:"default:false"`
	Notes          string `json:"notes"`

	// EditToken lets the guest edit their own booking without an account.
	EditToken string `json:"-" gorm:"index"`

	Rooms  []BookingRoom `json:"rooms" gorm:"foreignKey:BookingID"`
	Guests []Guest       `json:"guests" gorm:"foreignKey:BookingID"`
}

// BookingRoom is the per-room slice of a booking. Plain bookings copy the
// booking dates into every row; composite bookings carry a distinct range
// per row. The engine only ever sees these uniform rows.
type BookingRoom struct {
	gorm.Model
	BookingID uint      `json:"bookingID" gorm:"not null;index"`
	RoomID    uint      `json:"roomID" gorm:"not null;index"`
	StartDate time.Time `json:"startDate" gorm:"not null"`
	EndDate   time.Time `json:"endDate" gorm:"not null"`
	Adults    int       `json:"adults" gorm:"default:0"`
	Children  int       `json:"children" gorm:"default:0"`
	Toddlers  int       `json:"toddlers" gorm:"default:0"`
	// GuestType is the stored tier for this room, used when no guest record
	// decides the classification.
	GuestType string `json:"guestType"`
}

// Guest is one person inside a booking, assigned to a room. PriceType
// decides which tier that person is billed at; PersonType decides whether
// they are billed at all.
type Guest struct {
	gorm.Model
	BookingID  uint   `json:"bookingID" gorm:"not null;index"`
	RoomID     uint   `json:"roomID" gorm:"not null;index"`
	Name       string `json:"name"`
	PersonType string `json:"personType" gorm:"not null"` // adult, child, toddler
	PriceType  string `json:"priceType"`                  // utia, external
}

// Nights returns the number of charged nights of the interval.
func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// Nights returns the number of charged nights for this room row.
func (br *BookingRoom) Nights() int {
	return int(br.EndDate.Sub(br.StartDate).Hours() / 24)
}

// Paying reports whether the guest contributes to the price.
func (g *Guest) Paying() bool {
	return g.PersonType != PersonToddler
}
