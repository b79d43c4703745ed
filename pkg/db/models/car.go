package models

import (
	"time"

	"github.com/google/uuid"
)

// Car is a fleet vehicle. Rows are soft-deleted via IsActive so assignment
// history keeps its referential integrity.
type Car struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LicensePlate string    `gorm:"column:license_plate;type:text;not null;uniqueIndex"`
	Model        string    `gorm:"column:model;type:text;not null"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
