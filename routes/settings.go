package routes

import (
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

// Rate settings endpoints. There is exactly one settings row; the public
// handler exposes the rate card only, the admin handlers the whole row.

// GET /api/rates
func GetRates(ctx iris.Context) {
	var settings models.RateSettings
	if err := storage.DB.First(&settings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{
		"rates":        settings.Config(),
		"contactEmail": settings.ContactEmail,
	})
}

// GET /api/admin/settings
func AdminGetSettings(ctx iris.Context) {
	var settings models.RateSettings
	if err := storage.DB.First(&settings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"settings": settings})
}

type UpdateSettingsInput struct {
	UtiaBase  float64 `json:"utiaBase" validate:"min=0"`
	UtiaAdult float64 `json:"utiaAdult" validate:"min=0"`
	UtiaChild float64 `json:"utiaChild" validate:"min=0"`

	ExternalBase  float64 `json:"externalBase" validate:"min=0"`
	ExternalAdult float64 `json:"externalAdult" validate:"min=0"`
	ExternalChild float64 `json:"externalChild" validate:"min=0"`

	BulkBasePrice     float64 `json:"bulkBasePrice" validate:"min=0"`
	BulkUtiaAdult     float64 `json:"bulkUtiaAdult" validate:"min=0"`
	BulkUtiaChild     float64 `json:"bulkUtiaChild" validate:"min=0"`
	BulkExternalAdult float64 `json:"bulkExternalAdult" validate:"min=0"`
	BulkExternalChild float64 `json:"bulkExternalChild" validate:"min=0"`

	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`

	// AdminPassword rotates the shared admin credential when set.
	AdminPassword string `json:"adminPassword" validate:"omitempty,min=8"`
}

// PUT /api/admin/settings
// Replaces the rate card. A zero rate means "not configured"; bookings
// needing that rate are refused until it is set again.
func AdminUpdateSettings(ctx iris.Context) {
	var input UpdateSettingsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var settings models.RateSettings
	if err := storage.DB.First(&settings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	before := settings

	settings.UtiaBase = input.UtiaBase
	settings.UtiaAdult = input.UtiaAdult
	settings.UtiaChild = input.UtiaChild
	settings.ExternalBase = input.ExternalBase
	settings.ExternalAdult = input.ExternalAdult
	settings.ExternalChild = input.ExternalChild
	settings.BulkBasePrice = input.BulkBasePrice
	settings.BulkUtiaAdult = input.BulkUtiaAdult
	settings.BulkUtiaChild = input.BulkUtiaChild
	settings.BulkExternalAdult = input.BulkExternalAdult
	settings.BulkExternalChild = input.BulkExternalChild
	if input.ContactEmail != "" {
		settings.ContactEmail = input.ContactEmail
	}

	if input.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.AdminPassword), 14)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		settings.AdminPasswordHash = string(hash)
	}

	if err := storage.DB.Save(&settings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "settings.update", "settings", settings.ID, before, settings)
	ctx.JSON(iris.Map{"settings": settings})
}
