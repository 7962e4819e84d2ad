package models

import (
	"time"
)

// AuditLog records every admin mutation: blockage changes, rate updates,
// booking edits and deletions. Before/after snapshots are stored as raw
// JSON so the trail survives schema changes.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Actor        string    `json:"actor" gorm:"size:64;index"`
	Action       string    `json:"action" gorm:"size:64;index"`
	ResourceType string    `json:"resourceType" gorm:"size:64;index"`
	ResourceID   uint      `json:"resourceID" gorm:"index"`
	BeforeJSON   string    `json:"beforeJSON" gorm:"type:text"`
	AfterJSON    string    `json:"afterJSON" gorm:"type:text"`
	IPAddress    string    `json:"ipAddress" gorm:"size:64"`
	CreatedAt    time.Time `json:"createdAt"`
}
