package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Blockage endpoints (admin). A blockage closes rooms for maintenance or
// private events; an empty room list closes the whole property. The end
// date is the reopening day, so nights up to but not including it are
// blocked.

type CreateBlockageInput struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	RoomIDs   []uint `json:"roomIds"`
	Reason    string `json:"reason"`
}

// POST /api/admin/blockages
func CreateBlockage(ctx iris.Context) {
	var input CreateBlockageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	start, err := utils.ParseDate(input.StartDate)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}
	end, err := utils.ParseDate(input.EndDate)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}
	if !start.Before(end) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must be before endDate", ctx)
		return
	}

	if len(input.RoomIDs) > 0 {
		var count int64
		if err := storage.DB.Model(&models.Room{}).Where("id IN ?", input.RoomIDs).Count(&count).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		if count != int64(len(input.RoomIDs)) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "unknown room in roomIds", ctx)
			return
		}
	}

	blockage := models.Blockage{
		StartDate: start,
		EndDate:   end,
		Reason:    input.Reason,
		CreatedBy: "admin",
	}
	if err := blockage.SetRoomIDs(input.RoomIDs); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Create(&blockage).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "blockage.create", "blockage", blockage.ID, nil, blockage)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"blockage": blockage})
}

// GET /api/admin/blockages?asOf=YYYY-MM-DD
// Lists active and upcoming blockages plus those that ended within the
// last 30 days, so a recently lifted closure stays visible for review.
func ListBlockages(ctx iris.Context) {
	asOf := utils.Day(time.Now())
	if v := ctx.URLParam("asOf"); v != "" {
		day, err := utils.ParseDate(v)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
			return
		}
		asOf = day
	}
	cutoff := asOf.AddDate(0, 0, -30)

	var blockages []models.Blockage
	if err := storage.DB.Where("end_date >= ?", cutoff).
		Order("start_date ASC, id ASC").Find(&blockages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"blockages": blockages, "asOf": utils.FormatDate(asOf)})
}

// DELETE /api/admin/blockages/{id}
func DeleteBlockage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid blockage ID"})
		return
	}

	var blockage models.Blockage
	if err := storage.DB.First(&blockage, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&blockage).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "blockage.delete", "blockage", blockage.ID, blockage, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
