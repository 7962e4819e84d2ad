package routes

import (
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Admin session endpoints. The cottage has one shared admin identity;
// the password hash lives in the settings row and sessions are JWT pairs
// with the refresh side whitelisted in Redis.

type AdminLoginInput struct {
	Password string `json:"password" validate:"required"`
}

// POST /api/admin/login
func AdminLogin(ctx iris.Context) {
	var input AdminLoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var settings models.RateSettings
	if err := storage.DB.First(&settings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(input.Password)); err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid password.", ctx)
		return
	}

	tokenPair, err := utils.CreateAdminTokenPair()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// POST /api/admin/logout
func AdminLogout(ctx iris.Context) {
	var input utils.RefreshTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	utils.RevokeRefreshToken(input.RefreshToken)
	ctx.JSON(iris.Map{"success": true})
}

// GET /api/admin/audit
func AdminListAuditLog(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.AuditLog{})
	if action := ctx.URLParam("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resourceType := ctx.URLParam("resourceType"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	if resourceID, err := ctx.URLParamInt("resourceId"); err == nil && resourceID > 0 {
		query = query.Where("resource_id = ?", resourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&entries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, entries, page, perPage, total)
}

type roomOccupancy struct {
	RoomID        uint `json:"roomId"`
	BookedNights  int  `json:"bookedNights"`
	BlockedNights int  `json:"blockedNights"`
	FreeNights    int  `json:"freeNights"`
}

// GET /api/admin/stats?from=YYYY-MM-DD&to=YYYY-MM-DD
// Occupancy is counted night by night from one snapshot, the same way
// the calendar renders, so the numbers always match the grid.
func AdminStats(ctx iris.Context) {
	from, to, ok := calendarRange(ctx)
	if !ok {
		return
	}

	snap, err := loadSnapshotTx()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	nights := utils.Nights(from, to)
	rooms := make([]roomOccupancy, 0, len(snap.Rooms))
	totalBooked, totalBlocked := 0, 0
	for _, room := range snap.Rooms {
		occ := roomOccupancy{RoomID: room.ID}
		for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
			switch services.RoomDayStatus(snap, room.ID, day).Status {
			case services.StatusBooked:
				occ.BookedNights++
			case services.StatusBlocked:
				occ.BlockedNights++
			default:
				occ.FreeNights++
			}
		}
		totalBooked += occ.BookedNights
		totalBlocked += occ.BlockedNights
		rooms = append(rooms, occ)
	}

	occupancyRate := 0.0
	if capacity := nights * len(snap.Rooms); capacity > 0 {
		occupancyRate = float64(totalBooked) / float64(capacity)
	}

	var revenue float64
	if err := storage.DB.Model(&models.Booking{}).
		Where("end_date > ? AND start_date < ?", from, to).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var bookingCount int64
	if err := storage.DB.Model(&models.Booking{}).
		Where("end_date > ? AND start_date < ?", from, to).
		Count(&bookingCount).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"from":          utils.FormatDate(from),
		"to":            utils.FormatDate(to),
		"nights":        nights,
		"rooms":         rooms,
		"bookedNights":  totalBooked,
		"blockedNights": totalBlocked,
		"occupancyRate": occupancyRate,
		"revenue":       revenue,
		"bookings":      bookingCount,
	})
}
