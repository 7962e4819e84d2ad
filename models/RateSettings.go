package models

import (
	"gorm.io/gorm"
)

// RateSettings is the single configuration row of the system: nightly
// rates per guest tier, bulk rates for whole-property bookings and the
// admin credentials. Handlers load it once per request and hand the
// engine an immutable RateConfig; missing rates make calculations fail
// loudly instead of silently pricing at zero.
type RateSettings struct {
	gorm.Model
	UtiaBase      float64 `json:"utiaBase"`
	UtiaAdult     float64 `json:"utiaAdult"`
	UtiaChild     float64 `json:"utiaChild"`
	ExternalBase  float64 `json:"externalBase"`
	ExternalAdult float64 `json:"externalAdult"`
	ExternalChild float64 `json:"externalChild"`

	BulkBasePrice     float64 `json:"bulkBasePrice"`
	BulkUtiaAdult     float64 `json:"bulkUtiaAdult"`
	BulkUtiaChild     float64 `json:"bulkUtiaChild"`
	BulkExternalAdult float64 `json:"bulkExternalAdult"`
	BulkExternalChild float64 `json:"bulkExternalChild"`

	AdminPasswordHash string `json:"-"`
	ContactEmail      string `json:"contactEmail"`
}

// TierRates are the nightly rates of one guest tier. Base covers the room
// with one adult in it, Adult every additional adult, Child every child.
type TierRates struct {
	Base  float64 `json:"base"`
	Adult float64 `json:"adult"`
	Child float64 `json:"child"`
}

// BulkRates price a whole-property booking: one nightly base for the
// building plus per-person surcharges by tier.
type BulkRates struct {
	BasePrice     float64 `json:"basePrice"`
	UtiaAdult     float64 `json:"utiaAdult"`
	UtiaChild     float64 `json:"utiaChild"`
	ExternalAdult float64 `json:"externalAdult"`
	ExternalChild float64 `json:"externalChild"`
}

// RateConfig is the snapshot of all rates a single calculation runs
// against. Values, not pointers: once handed to the engine it cannot
// change underneath it.
type RateConfig struct {
	Utia     TierRates `json:"utia"`
	External TierRates `json:"external"`
	Bulk     BulkRates `json:"bulk"`
}

// Config snapshots the stored rates.
func (s *RateSettings) Config() RateConfig {
	return RateConfig{
		Utia: TierRates{
			Base:  s.UtiaBase,
			Adult: s.UtiaAdult,
			Child: s.UtiaChild,
		},
		External: TierRates{
			Base:  s.ExternalBase,
			Adult: s.ExternalAdult,
			Child: s.ExternalChild,
		},
		Bulk: BulkRates{
			BasePrice:     s.BulkBasePrice,
			UtiaAdult:     s.BulkUtiaAdult,
			UtiaChild:     s.BulkUtiaChild,
			ExternalAdult: s.BulkExternalAdult,
			ExternalChild: s.BulkExternalChild,
		},
	}
}

// Tier returns the rates for a guest tier, defaulting to the external
// rates for anything that is not the institute tier.
func (c RateConfig) Tier(guestType string) TierRates {
	if guestType == GuestTypeUtia {
		return c.Utia
	}
	return c.External
}
