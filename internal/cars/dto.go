package cars

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
)

// CarDTO is the transport shape for a fleet vehicle.
type CarDTO struct {
	ID           uuid.UUID `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Model        string    `json:"model"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCarDTO holds the fields the repo needs to persist a new car.
type CreateCarDTO struct {
	LicensePlate string
	Model        string
}

// ListPage wraps one page of cars plus the cursor for the next page.
type ListPage struct {
	Cars       []CarDTO `json:"cars"`
	NextCursor *string  `json:"next_cursor,omitempty"`
}

func FromModel(c *models.Car) *CarDTO {
	if c == nil {
		return nil
	}

	return &CarDTO{
		ID:           c.ID,
		LicensePlate: c.LicensePlate,
		Model:        c.Model,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
	}
}

func (c CreateCarDTO) ToModel() *models.Car {
	return &models.Car{
		LicensePlate: c.LicensePlate,
		Model:        c.Model,
		IsActive:     true,
	}
}
