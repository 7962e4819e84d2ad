package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Room catalog endpoints. The catalog is small and changes rarely; the
// public handler serves it whole for the booking form.

// GET /api/rooms
func GetRooms(ctx iris.Context) {
	var rooms []models.Room
	if err := storage.DB.Order("id ASC").Find(&rooms).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"rooms": rooms})
}

type RoomInput struct {
	Name     string `json:"name" validate:"required"`
	BedCount int    `json:"bedCount" validate:"required,min=1,max=12"`
	Floor    int    `json:"floor" validate:"min=0"`
	Notes    string `json:"notes"`
}

// POST /api/admin/rooms
func AdminCreateRoom(ctx iris.Context) {
	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.Room{
		Name:     input.Name,
		BedCount: input.BedCount,
		Floor:    input.Floor,
		Notes:    input.Notes,
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "room.create", "room", room.ID, nil, room)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"room": room})
}

// PUT /api/admin/rooms/{id}
// Shrinking a room below the size of an already accepted stay is allowed;
// existing bookings keep their terms and only new requests see the new
// capacity.
func AdminUpdateRoom(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid room ID"})
		return
	}

	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := room
	room.Name = input.Name
	room.BedCount = input.BedCount
	room.Floor = input.Floor
	room.Notes = input.Notes
	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "room.update", "room", room.ID, before, room)
	ctx.JSON(iris.Map{"room": room})
}

// DELETE /api/admin/rooms/{id}
// Refused while the room still has upcoming stays; history may reference
// a removed room because stay rows keep their own copy of the terms.
func AdminDeleteRoom(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid room ID"})
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var upcoming int64
	if err := storage.DB.Model(&models.BookingRoom{}).
		Where("room_id = ? AND end_date > ?", room.ID, utils.Day(time.Now())).
		Count(&upcoming).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if upcoming > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "room still has upcoming stays", ctx)
		return
	}

	if err := storage.DB.Delete(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "room.delete", "room", room.ID, room, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
