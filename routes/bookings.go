package routes

import (
	"errors"
	"fmt"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Booking endpoints (guest-facing)

type BookingRoomInput struct {
	RoomID    uint   `json:"roomId" validate:"required"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Adults    int    `json:"adults" validate:"min=0"`
	Children  int    `json:"children" validate:"min=0"`
	Toddlers  int    `json:"toddlers" validate:"min=0"`
	GuestType string `json:"guestType" validate:"omitempty,oneof=utia external"`
}

type GuestInput struct {
	RoomID     uint   `json:"roomId" validate:"required"`
	Name       string `json:"name"`
	PersonType string `json:"personType" validate:"required,oneof=adult child toddler"`
	PriceType  string `json:"priceType" validate:"omitempty,oneof=utia external"`
}

type CreateBookingInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	ICO     string `json:"ico"`
	DIC     string `json:"dic"`

	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`

	// Rooms may be omitted for bulk bookings; the whole catalog is booked.
	Rooms  []BookingRoomInput `json:"rooms" validate:"omitempty,dive"`
	Guests []GuestInput       `json:"guests" validate:"omitempty,dive"`

	// GroupID joins an existing interval group; NewGroup founds a fresh one.
	GroupID  string `json:"groupId"`
	NewGroup bool   `json:"newGroup"`

	IsBulk    bool   `json:"isBulk"`
	GuestType string `json:"guestType" validate:"omitempty,oneof=utia external"`

	// Booking-level totals, used by bulk bookings.
	Adults   int `json:"adults" validate:"min=0"`
	Children int `json:"children" validate:"min=0"`
	Toddlers int `json:"toddlers" validate:"min=0"`

	Paid           bool   `json:"paid"`
	PayFromBenefit bool   `json:"payFromBenefit"`
	Notes          string `json:"notes"`

	// ExcludeBookingID makes a dry-run validation ignore one existing
	// booking, for previewing an edit.
	ExcludeBookingID uint `json:"excludeBookingId"`

	SkipNotification bool `json:"skipNotification"`
}

type UpdateBookingInput struct {
	CreateBookingInput
	EditToken string `json:"editToken"`
}

var errStorage = errors.New("storage failure")

// assembleBooking normalizes a request into a booking with uniform
// per-room rows: rooms without their own dates inherit the shared range,
// and a bulk booking books the whole catalog whether or not it spells the
// rooms out. The booking-level range ends up as the envelope of its rooms.
func assembleBooking(input CreateBookingInput, catalog []models.Room) (*models.Booking, error) {
	start, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("startDate must be before endDate")
	}

	if input.Phone != "" && !utils.ValidatePhoneNumber(input.Phone) {
		return nil, fmt.Errorf("invalid phone number, expected 9 digits after an optional 420/421 country code")
	}

	guestType := input.GuestType
	if guestType == "" {
		guestType = models.GuestTypeUtia
	}

	b := &models.Booking{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          utils.NormalizePhoneNumber(input.Phone),
		Company:        input.Company,
		Address:        input.Address,
		City:           input.City,
		Zip:            input.Zip,
		ICO:            input.ICO,
		DIC:            input.DIC,
		StartDate:      start,
		EndDate:        end,
		IsBulk:         input.IsBulk,
		GuestType:      guestType,
		Adults:         input.Adults,
		Children:       input.Children,
		Toddlers:       input.Toddlers,
		Paid:           input.Paid,
		PayFromBenefit: input.PayFromBenefit,
		Notes:          input.Notes,
	}

	roomInputs := input.Rooms
	if b.IsBulk && len(roomInputs) == 0 {
		for _, room := range catalog {
			roomInputs = append(roomInputs, BookingRoomInput{RoomID: room.ID})
		}
	}
	if len(roomInputs) == 0 {
		return nil, fmt.Errorf("at least one room is required")
	}

	// A bulk booking takes the whole property; an explicit room list may
	// spell that out but must not shrink it.
	if b.IsBulk {
		covered := make(map[uint]bool, len(roomInputs))
		for _, ri := range roomInputs {
			covered[ri.RoomID] = true
		}
		for _, room := range catalog {
			if !covered[room.ID] {
				return nil, fmt.Errorf("a bulk booking reserves the whole property, room %d is missing", room.ID)
			}
		}
	}

	for _, ri := range roomInputs {
		rs, re := start, end
		if ri.StartDate != "" || ri.EndDate != "" {
			if ri.StartDate == "" || ri.EndDate == "" {
				return nil, fmt.Errorf("room %d needs both startDate and endDate", ri.RoomID)
			}
			if rs, err = utils.ParseDate(ri.StartDate); err != nil {
				return nil, err
			}
			if re, err = utils.ParseDate(ri.EndDate); err != nil {
				return nil, err
			}
			if !rs.Before(re) {
				return nil, fmt.Errorf("room %d: startDate must be before endDate", ri.RoomID)
			}
		}
		rowType := ri.GuestType
		if rowType == "" {
			rowType = guestType
		}
		b.Rooms = append(b.Rooms, models.BookingRoom{
			RoomID:    ri.RoomID,
			StartDate: rs,
			EndDate:   re,
			Adults:    ri.Adults,
			Children:  ri.Children,
			Toddlers:  ri.Toddlers,
			GuestType: rowType,
		})
	}

	for i, row := range b.Rooms {
		if i == 0 || row.StartDate.Before(b.StartDate) {
			b.StartDate = row.StartDate
		}
		if i == 0 || row.EndDate.After(b.EndDate) {
			b.EndDate = row.EndDate
		}
	}

	roomSet := make(map[uint]bool, len(b.Rooms))
	for _, row := range b.Rooms {
		roomSet[row.RoomID] = true
	}
	for _, gi := range input.Guests {
		if !roomSet[gi.RoomID] {
			return nil, fmt.Errorf("guest %q is assigned to room %d which is not part of the booking", gi.Name, gi.RoomID)
		}
		b.Guests = append(b.Guests, models.Guest{
			RoomID:     gi.RoomID,
			Name:       gi.Name,
			PersonType: gi.PersonType,
			PriceType:  gi.PriceType,
		})
	}

	if b.IsBulk {
		var beds int
		for _, room := range catalog {
			beds += room.BedCount
		}
		if b.Adults+b.Children > beds {
			return nil, fmt.Errorf("the property sleeps %d, requested %d guests", beds, b.Adults+b.Children)
		}
	}

	return b, nil
}

// loadSnapshot reads the catalog, every live stay row and every blockage.
// Pass a transaction handle to pin the view to it.
func loadSnapshot(db *gorm.DB) (services.Snapshot, error) {
	var snap services.Snapshot
	if err := db.Find(&snap.Rooms).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Stays).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Blockages).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

// loadSnapshotTx loads the snapshot in one read transaction, so list and
// dry-run paths see a single consistent instant.
func loadSnapshotTx() (services.Snapshot, error) {
	var snap services.Snapshot
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		snap, txErr = loadSnapshot(tx)
		return txErr
	})
	return snap, err
}

// loadRateConfig reads the settings row as an immutable rate snapshot.
func loadRateConfig(db *gorm.DB) (models.RateConfig, error) {
	var settings models.RateSettings
	if err := db.First(&settings).Error; err != nil {
		return models.RateConfig{}, err
	}
	return settings.Config(), nil
}

func availabilityRequest(b *models.Booking, exclude uint) services.AvailabilityRequest {
	req := services.AvailabilityRequest{ExcludeBookingID: exclude}
	for _, row := range b.Rooms {
		req.Rooms = append(req.Rooms, services.RoomRequest{
			RoomID:    row.RoomID,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Adults:    row.Adults,
			Children:  row.Children,
			Toddlers:  row.Toddlers,
		})
	}
	return req
}

// bookingRoomIDs lists the affected rooms in stable order so concurrent
// transactions always lock them in the same sequence.
func bookingRoomIDs(b *models.Booking) []uint {
	ids := make([]uint, 0, len(b.Rooms))
	for _, row := range b.Rooms {
		ids = append(ids, row.RoomID)
	}
	slices.Sort(ids)
	return ids
}

// recoverTx rolls the transaction back after a panic and reports the
// panic as a storage failure.
func recoverTx(tx *gorm.DB, err *error) {
	if r := recover(); r != nil {
		tx.Rollback()
		*err = fmt.Errorf("%w: panic: %v", errStorage, r)
	}
}

// saveBookingTx is the atomic check-and-reserve: it locks the affected
// room rows, validates the booking against a snapshot taken under the
// lock, recomputes the price and persists, all in one transaction. A
// concurrent request for any shared room waits on the lock and then sees
// this booking in its own snapshot.
func saveBookingTx(booking *models.Booking, isNew bool, cfg models.RateConfig) (conflicts []services.ConflictError, err error) {
	tx := storage.DB.Begin()
	defer recoverTx(tx, &err)

	var locked []models.Room
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", bookingRoomIDs(booking)).Find(&locked).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", errStorage, err)
	}

	snap, err := loadSnapshot(tx)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", errStorage, err)
	}

	exclude := uint(0)
	if !isNew {
		exclude = booking.ID
	}
	conflicts, err = services.ValidateRequest(snap, availabilityRequest(booking, exclude))
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(conflicts) > 0 {
		tx.Rollback()
		return conflicts, nil
	}

	price, err := services.CalculateBookingPrice(cfg, booking)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	booking.TotalPrice = price

	if isNew {
		if err := tx.Create(booking).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", errStorage, err)
		}
	} else {
		// Replace the room and guest rows wholesale; an edit always
		// carries the full new composition.
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.BookingRoom{}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", errStorage, err)
		}
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Guest{}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", errStorage, err)
		}
		if err := tx.Save(booking).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", errStorage, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%w: %v", errStorage, err)
	}
	return nil, nil
}

// respondEngineError maps validation and pricing failures onto statuses:
// capacity and malformed input are 400, a missing rate is 422.
func respondEngineError(ctx iris.Context, err error) {
	var capErr *services.CapacityError
	if errors.As(err, &capErr) {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "capacity", "message": capErr.Error(), "detail": capErr})
		return
	}
	var confErr *services.ConfigurationError
	if errors.As(err, &confErr) {
		ctx.StatusCode(iris.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{"error": "configuration", "message": confErr.Error(), "detail": confErr})
		return
	}
	utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
}

func respondConflicts(ctx iris.Context, conflicts []services.ConflictError) {
	ctx.StatusCode(iris.StatusConflict)
	ctx.JSON(iris.Map{
		"error":     "conflict",
		"message":   conflicts[0].Error(),
		"conflicts": conflicts,
	})
}

// bookingView decorates a booking with its freshly recomputed price. The
// stored total stays visible for comparison; a difference is a note for
// the reader, never an error.
func bookingView(b *models.Booking, cfg models.RateConfig) iris.Map {
	view := iris.Map{"booking": b, "totalPrice": b.TotalPrice}
	current, err := services.CalculateBookingPrice(cfg, b)
	if err != nil {
		view["priceError"] = err.Error()
		return view
	}
	view["currentPrice"] = current
	view["priceOutdated"] = services.PriceOutdated(b.TotalPrice, current)
	return view
}

// POST /api/bookings
func CreateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var catalog []models.Room
	if err := storage.DB.Find(&catalog).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booking, err := assembleBooking(input, catalog)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booking.EditToken = utils.GenerateShortToken(16)
	booking.GroupID = input.GroupID
	if input.NewGroup && booking.GroupID == "" {
		booking.GroupID = utils.GenerateShortToken(8)
	}

	conflicts, err := saveBookingTx(booking, true, cfg)
	if err != nil {
		if errors.Is(err, errStorage) {
			utils.CreateInternalServerError(ctx)
		} else {
			respondEngineError(ctx, err)
		}
		return
	}
	if len(conflicts) > 0 {
		respondConflicts(ctx, conflicts)
		return
	}

	go services.MailServiceInstance.SendBookingCreated(booking, input.SkipNotification)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"booking":    booking,
		"editToken":  booking.EditToken,
		"groupId":    booking.GroupID,
		"totalPrice": booking.TotalPrice,
	})
}

// POST /api/bookings/validate
// Dry run: reports conflicts without reserving anything.
func ValidateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var catalog []models.Room
	if err := storage.DB.Find(&catalog).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booking, err := assembleBooking(input, catalog)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	snap, err := loadSnapshotTx()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	conflicts, err := services.ValidateRequest(snap, availabilityRequest(booking, input.ExcludeBookingID))
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	if len(conflicts) > 0 {
		respondConflicts(ctx, conflicts)
		return
	}

	ctx.JSON(iris.Map{"valid": true})
}

// POST /api/bookings/quote
// Pure pricing for the booking form, nothing is persisted.
type QuoteInput struct {
	StartDate string             `json:"startDate" validate:"required"`
	EndDate   string             `json:"endDate" validate:"required"`
	Rooms     []BookingRoomInput `json:"rooms" validate:"omitempty,dive"`
	Guests    []GuestInput       `json:"guests" validate:"omitempty,dive"`
	IsBulk    bool               `json:"isBulk"`
	GuestType string             `json:"guestType" validate:"omitempty,oneof=utia external"`
	Adults    int                `json:"adults" validate:"min=0"`
	Children  int                `json:"children" validate:"min=0"`
	Toddlers  int                `json:"toddlers" validate:"min=0"`
}

func QuoteBookingPrice(ctx iris.Context) {
	var input QuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var catalog []models.Room
	if err := storage.DB.Find(&catalog).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booking, err := assembleBooking(CreateBookingInput{
		Name:      "quote",
		Email:     "quote@localhost",
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Rooms:     input.Rooms,
		Guests:    input.Guests,
		IsBulk:    input.IsBulk,
		GuestType: input.GuestType,
		Adults:    input.Adults,
		Children:  input.Children,
		Toddlers:  input.Toddlers,
	}, catalog)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	total, err := services.CalculateBookingPrice(cfg, booking)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	result := iris.Map{
		"totalPrice": total,
		"nights":     booking.Nights(),
	}
	if !booking.IsBulk {
		breakdown, err := services.CalculatePerRoomPrices(cfg, booking.Rooms, booking.Guests, booking.GuestType)
		if err != nil {
			respondEngineError(ctx, err)
			return
		}
		result["rooms"] = breakdown
	}
	ctx.JSON(result)
}

// GET /api/bookings/{id}?editToken=...
func GetBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid booking ID"})
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Rooms").Preload("Guests").First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if ctx.URLParam("editToken") != booking.EditToken {
		utils.CreateForbidden(ctx)
		return
	}

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(bookingView(&booking, cfg))
}

// PUT /api/bookings/{id}
// Guest self-service edit, authorized by the mailed edit token. The edit
// re-validates and re-prices only this interval; group siblings are never
// touched.
func UpdateBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid booking ID"})
		return
	}

	var input UpdateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Rooms").Preload("Guests").First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if input.EditToken == "" || input.EditToken != booking.EditToken {
		utils.CreateForbidden(ctx)
		return
	}

	applyBookingUpdate(ctx, &booking, input.CreateBookingInput)
}

// applyBookingUpdate is shared by the guest and admin edit paths once the
// caller has authorized the change.
func applyBookingUpdate(ctx iris.Context, booking *models.Booking, input CreateBookingInput) {
	var catalog []models.Room
	if err := storage.DB.Find(&catalog).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	updated, err := assembleBooking(input, catalog)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	before := *booking

	booking.Name = updated.Name
	booking.Email = updated.Email
	booking.Phone = updated.Phone
	booking.Company = updated.Company
	booking.Address = updated.Address
	booking.City = updated.City
	booking.Zip = updated.Zip
	booking.ICO = updated.ICO
	booking.DIC = updated.DIC
	booking.StartDate = updated.StartDate
	booking.EndDate = updated.EndDate
	booking.IsBulk = updated.IsBulk
	booking.GuestType = updated.GuestType
	booking.Adults = updated.Adults
	booking.Children = updated.Children
	booking.Toddlers = updated.Toddlers
	booking.Paid = updated.Paid
	booking.PayFromBenefit = updated.PayFromBenefit
	booking.Notes = updated.Notes
	booking.Rooms = updated.Rooms
	booking.Guests = updated.Guests

	conflicts, err := saveBookingTx(booking, false, cfg)
	if err != nil {
		if errors.Is(err, errStorage) {
			utils.CreateInternalServerError(ctx)
		} else {
			respondEngineError(ctx, err)
		}
		return
	}
	if len(conflicts) > 0 {
		respondConflicts(ctx, conflicts)
		return
	}

	utils.Audit(ctx, "booking.update", "booking", booking.ID, before, booking)
	go services.MailServiceInstance.SendBookingUpdated(booking, input.SkipNotification)

	ctx.JSON(bookingView(booking, cfg))
}

// DELETE /api/bookings/{id}?editToken=...&skipNotification=
// Removes one interval; any group siblings stay untouched and the group
// dissolves by itself when the last member goes.
func DeleteBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid booking ID"})
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Rooms").Preload("Guests").First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if ctx.URLParam("editToken") != booking.EditToken {
		utils.CreateForbidden(ctx)
		return
	}

	if err := deleteBookingTx(&booking); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "booking.delete", "booking", booking.ID, booking, nil)
	go services.MailServiceInstance.SendBookingCancelled(&booking, ctx.URLParamBoolDefault("skipNotification", false))

	ctx.StatusCode(iris.StatusNoContent)
}

// deleteBookingTx removes a booking with its room and guest rows in one
// transaction so the occupancy index never sees a half-removed booking.
func deleteBookingTx(booking *models.Booking) (err error) {
	tx := storage.DB.Begin()
	defer recoverTx(tx, &err)

	if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.BookingRoom{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Guest{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Booking{}, booking.ID).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
