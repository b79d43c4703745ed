package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type driverRepository interface {
	Create(ctx context.Context, dto CreateDriverDTO) (*models.Driver, error)
	ListActive(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Driver, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateDriverInput is the payload for registering a driver.
type CreateDriverInput struct {
	Name  string  `json:"name" validate:"required,max=128"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// Service exposes driver catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateDriverInput) (*DriverDTO, error)
	List(ctx context.Context, params pagination.Params) (*ListPage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo driverRepository
}

// NewService constructs a driver catalog service.
func NewService(repo driverRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("drivers repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateDriverInput) (*DriverDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var phone *string
	if input.Phone != nil {
		trimmed := strings.TrimSpace(*input.Phone)
		if trimmed != "" {
			phone = &trimmed
		}
	}

	driver, err := s.repo.Create(ctx, CreateDriverDTO{Name: name, Phone: phone})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver")
	}
	return FromModel(driver), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListActive(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drivers")
	}

	page := &ListPage{Drivers: make([]DriverDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			next := pagination.EncodeCursor(pagination.Cursor{Timestamp: last.CreatedAt, ID: last.ID})
			page.NextCursor = &next
			break
		}
		page.Drivers = append(page.Drivers, *FromModel(&rows[i]))
	}
	return page, nil
}

// Delete soft-deletes the driver and stays a no-op when repeated.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	matched, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate driver")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	return nil
}
