package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Calendar endpoints. The grid is derived from one snapshot so every
// cell reflects the same instant; a night is free, booked or blocked and
// a blockage wins over a booking on the same night.

const maxCalendarDays = 366

type roomCalendar struct {
	RoomID   uint                          `json:"roomId"`
	Name     string                        `json:"name"`
	BedCount int                           `json:"bedCount"`
	Days     map[string]services.DayStatus `json:"days"`
}

// GET /api/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
// The to date is exclusive, like every other range in the API.
func GetCalendar(ctx iris.Context) {
	from, to, ok := calendarRange(ctx)
	if !ok {
		return
	}

	snap, err := loadSnapshotTx()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	rooms := make([]roomCalendar, 0, len(snap.Rooms))
	for _, room := range snap.Rooms {
		rooms = append(rooms, buildRoomCalendar(snap, room, from, to))
	}

	ctx.JSON(iris.Map{
		"from":  utils.FormatDate(from),
		"to":    utils.FormatDate(to),
		"rooms": rooms,
	})
}

// GET /api/rooms/{id}/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetRoomCalendar(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid room ID"})
		return
	}

	from, to, ok := calendarRange(ctx)
	if !ok {
		return
	}

	snap, err := loadSnapshotTx()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	room := snap.Room(id)
	if room == nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(buildRoomCalendar(snap, *room, from, to))
}

func buildRoomCalendar(snap services.Snapshot, room models.Room, from, to time.Time) roomCalendar {
	cal := roomCalendar{
		RoomID:   room.ID,
		Name:     room.Name,
		BedCount: room.BedCount,
		Days:     make(map[string]services.DayStatus),
	}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		cal.Days[utils.FormatDate(day)] = services.RoomDayStatus(snap, room.ID, day)
	}
	return cal
}

func calendarRange(ctx iris.Context) (time.Time, time.Time, bool) {
	from, err := utils.ParseDate(ctx.URLParam("from"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return time.Time{}, time.Time{}, false
	}
	to, err := utils.ParseDate(ctx.URLParam("to"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return time.Time{}, time.Time{}, false
	}
	if !from.Before(to) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "from must be before to", ctx)
		return time.Time{}, time.Time{}, false
	}
	if utils.Nights(from, to) > maxCalendarDays {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "date range too large", ctx)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
