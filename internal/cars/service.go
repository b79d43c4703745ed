package cars

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type carRepository interface {
	Create(ctx context.Context, dto CreateCarDTO) (*models.Car, error)
	ListActive(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Car, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateCarInput is the payload for registering a vehicle.
type CreateCarInput struct {
	LicensePlate string `json:"license_plate" validate:"required,max=16"`
	Model        string `json:"model" validate:"required,max=64"`
}

// Service exposes car catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateCarInput) (*CarDTO, error)
	List(ctx context.Context, params pagination.Params) (*ListPage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo carRepository
}

// NewService constructs a car catalog service.
func NewService(repo carRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cars repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCarInput) (*CarDTO, error) {
	plate := strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	model := strings.TrimSpace(input.Model)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate is required")
	}
	if model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}

	car, err := s.repo.Create(ctx, CreateCarDTO{LicensePlate: plate, Model: model})
	if err != nil {
		if db.IsUniqueViolation(err, "cars_license_plate_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "license plate already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create car")
	}
	return FromModel(car), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListActive(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cars")
	}

	page := &ListPage{Cars: make([]CarDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			next := pagination.EncodeCursor(pagination.Cursor{Timestamp: last.CreatedAt, ID: last.ID})
			page.NextCursor = &next
			break
		}
		page.Cars = append(page.Cars, *FromModel(&rows[i]))
	}
	return page, nil
}

// Delete soft-deletes the car. Repeating the call is a no-op; the unique
// plate constraint still applies to inactive rows.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "car id required")
	}
	matched, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate car")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
	}
	return nil
}
