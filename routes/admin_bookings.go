package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Admin booking endpoints. Same lifecycle as the guest surface, minus
// the edit-token gate; every mutation is audited.

// bookingViews maps a page of bookings through bookingView, so listings
// carry the same recomputed prices as the detail view.
func bookingViews(bookings []models.Booking, cfg models.RateConfig) []iris.Map {
	views := make([]iris.Map, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookingView(&bookings[i], cfg))
	}
	return views
}

// GET /api/admin/bookings
// Filters: from/to (overlap window), roomId, groupId, paid, isBulk, q.
func AdminListBookings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Booking{})

	if from := ctx.URLParam("from"); from != "" {
		day, err := utils.ParseDate(from)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
			return
		}
		query = query.Where("end_date > ?", day)
	}
	if to := ctx.URLParam("to"); to != "" {
		day, err := utils.ParseDate(to)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
			return
		}
		query = query.Where("start_date < ?", day)
	}
	if roomID, err := ctx.URLParamInt("roomId"); err == nil && roomID > 0 {
		query = query.Where("id IN (?)",
			storage.DB.Model(&models.BookingRoom{}).Select("booking_id").Where("room_id = ?", roomID))
	}
	if groupID := ctx.URLParam("groupId"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if paid := ctx.URLParam("paid"); paid != "" {
		query = query.Where("paid = ?", paid == "true")
	}
	if isBulk := ctx.URLParam("isBulk"); isBulk != "" {
		query = query.Where("is_bulk = ?", isBulk == "true")
	}
	if q := ctx.URLParam("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var bookings []models.Booking
	if err := query.Preload("Rooms").Preload("Guests").
		Order("start_date ASC, id ASC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, bookingViews(bookings, cfg), page, perPage, total)
}

// GET /api/admin/bookings/{id}
func AdminGetBooking(ctx iris.Context) {
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

	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	view := bookingView(&booking, cfg)
	view["editToken"] = booking.EditToken
	ctx.JSON(view)
}

// PUT /api/admin/bookings/{id}
func AdminUpdateBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid booking ID"})
		return
	}

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Rooms").Preload("Guests").First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	applyBookingUpdate(ctx, &booking, input)
}

// PATCH /api/admin/bookings/{id}/paid
type MarkPaidInput struct {
	Paid bool `json:"paid"`
}

func AdminMarkBookingPaid(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid booking ID"})
		return
	}

	var input MarkPaidInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := booking
	booking.Paid = input.Paid
	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "booking.paid", "booking", booking.ID, before, booking)
	ctx.JSON(iris.Map{"booking": booking})
}

// DELETE /api/admin/bookings/{id}?skipNotification=
func AdminDeleteBooking(ctx iris.Context) {
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

	if err := deleteBookingTx(&booking); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "booking.delete", "booking", booking.ID, booking, nil)
	go services.MailServiceInstance.SendBookingCancelled(&booking, ctx.URLParamBoolDefault("skipNotification", false))

	ctx.StatusCode(iris.StatusNoContent)
}
