package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
)

// AssignmentDTO is the transport shape for one assignment row.
type AssignmentDTO struct {
	ID           uuid.UUID  `json:"id"`
	CarID        uuid.UUID  `json:"car_id"`
	DriverID     uuid.UUID  `json:"driver_id"`
	AssignedBy   uuid.UUID  `json:"assigned_by"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
	UnassignedBy *uuid.UUID `json:"unassigned_by,omitempty"`
}

// OpenAssignmentDTO joins an open assignment with the display fields the
// dashboard renders without extra lookups.
type OpenAssignmentDTO struct {
	AssignmentDTO
	CarLicensePlate string `json:"car_license_plate"`
	CarModel        string `json:"car_model"`
	DriverName      string `json:"driver_name"`
}

// HistoryPage wraps one page of assignment history plus the next cursor.
type HistoryPage struct {
	Assignments []AssignmentDTO `json:"assignments"`
	NextCursor  *string         `json:"next_cursor,omitempty"`
}

// CreateAssignmentInput is the payload for pairing a car with a driver.
type CreateAssignmentInput struct {
	CarID      uuid.UUID  `json:"car_id" validate:"required"`
	DriverID   uuid.UUID  `json:"driver_id" validate:"required"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

// EndAssignmentInput addresses the open assignment to close, either by car
// or by assignment id.
type EndAssignmentInput struct {
	CarID        *uuid.UUID `json:"car_id,omitempty"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
}

func FromModel(a *models.Assignment) *AssignmentDTO {
	if a == nil {
		return nil
	}

	return &AssignmentDTO{
		ID:           a.ID,
		CarID:        a.CarID,
		DriverID:     a.DriverID,
		AssignedBy:   a.AssignedBy,
		AssignedAt:   a.AssignedAt,
		UnassignedAt: a.UnassignedAt,
		UnassignedBy: a.UnassignedBy,
	}
}
