package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/services"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Group endpoints. A group is nothing but the set of bookings sharing a
// group ID; its totals are recomputed from the members on every read, so
// editing or cancelling one interval can never strand a stale aggregate.

func loadGroupMembers(groupID string) ([]models.Booking, error) {
	var members []models.Booking
	err := storage.DB.Preload("Rooms").Preload("Guests").
		Where("group_id = ?", groupID).
		Order("start_date ASC, id ASC").
		Find(&members).Error
	return members, err
}

func respondGroup(ctx iris.Context, groupID string, members []models.Booking) {
	cfg, err := loadRateConfig(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	summary, err := services.BuildGroup(cfg, groupID, members)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"group": summary})
}

// GET /api/groups/{groupId}?editToken=...
// The edit token of any member opens the whole group view.
func GetGroup(ctx iris.Context) {
	groupID := ctx.Params().Get("groupId")

	members, err := loadGroupMembers(groupID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if len(members) == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	token := ctx.URLParam("editToken")
	authorized := false
	for i := range members {
		if token != "" && token == members[i].EditToken {
			authorized = true
			break
		}
	}
	if !authorized {
		utils.CreateForbidden(ctx)
		return
	}

	respondGroup(ctx, groupID, members)
}

// GET /api/admin/groups/{groupId}
func AdminGetGroup(ctx iris.Context) {
	groupID := ctx.Params().Get("groupId")

	members, err := loadGroupMembers(groupID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if len(members) == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	respondGroup(ctx, groupID, members)
}
