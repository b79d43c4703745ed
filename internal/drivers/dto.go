package drivers

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
)

// DriverDTO is the transport shape for a fleet driver.
type DriverDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateDriverDTO holds the fields the repo needs to persist a new driver.
type CreateDriverDTO struct {
	Name  string
	Phone *string
}

// ListPage wraps one page of drivers plus the cursor for the next page.
type ListPage struct {
	Drivers    []DriverDTO `json:"drivers"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

func FromModel(d *models.Driver) *DriverDTO {
	if d == nil {
		return nil
	}

	return &DriverDTO{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

func (c CreateDriverDTO) ToModel() *models.Driver {
	return &models.Driver{
		Name:     c.Name,
		Phone:    c.Phone,
		IsActive: true,
	}
}
