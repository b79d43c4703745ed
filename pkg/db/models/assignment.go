package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment pairs a car with a driver. A row is open while UnassignedAt is
// null; closing it is the only permitted mutation and rows are never deleted.
type Assignment struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CarID        uuid.UUID  `gorm:"column:car_id;type:uuid;not null"`
	DriverID     uuid.UUID  `gorm:"column:driver_id;type:uuid;not null"`
	AssignedBy   uuid.UUID  `gorm:"column:assigned_by;type:uuid;not null"`
	AssignedAt   time.Time  `gorm:"column:assigned_at;not null"`
	UnassignedAt *time.Time `gorm:"column:unassigned_at"`
	UnassignedBy *uuid.UUID `gorm:"column:unassigned_by;type:uuid"`
}

// Open reports whether the assignment is still active.
func (a Assignment) Open() bool {
	return a.UnassignedAt == nil
}
