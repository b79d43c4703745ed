package assignments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type carFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
}

type driverFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error)
}

// Service owns the assignment lifecycle. It is the only writer path for
// assignment rows: one car and one driver hold at most one open assignment
// each, at all times.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreateAssignmentInput) (*AssignmentDTO, error)
	End(ctx context.Context, actorID uuid.UUID, input EndAssignmentInput) error
	ListOpen(ctx context.Context) ([]OpenAssignmentDTO, error)
	HistoryByCar(ctx context.Context, carID uuid.UUID, params pagination.Params) (*HistoryPage, error)
	HistoryByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*HistoryPage, error)
}

type service struct {
	tx      TxRunner
	repo    Repository
	cars    carFinder
	drivers driverFinder
	now     func() time.Time
}

// ServiceParams bundles the dependencies for the assignment service.
type ServiceParams struct {
	Tx      TxRunner
	Repo    Repository
	Cars    carFinder
	Drivers driverFinder

	// Now overrides the clock in tests. Defaults to time.Now in UTC.
	Now func() time.Time
}

// NewService constructs the assignment lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("assignments repository is required")
	}
	if params.Cars == nil {
		return nil, fmt.Errorf("cars repository is required")
	}
	if params.Drivers == nil {
		return nil, fmt.Errorf("drivers repository is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:      params.Tx,
		repo:    params.Repo,
		cars:    params.Cars,
		drivers: params.Drivers,
		now:     now,
	}, nil
}

// Create pairs a car with a driver. Any open assignment referencing either
// side is closed first, inside the same transaction as the insert, so a
// reassignment implicitly frees the previous driver (and vice versa) without
// the invariant ever being observable as violated.
func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreateAssignmentInput) (*AssignmentDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CarID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car_id required")
	}
	if input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver_id required")
	}

	car, err := s.cars.FindByID(ctx, input.CarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load car")
	}
	if !car.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
	}

	driver, err := s.drivers.FindByID(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if !driver.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	now := s.now()
	assignedAt := now
	if input.AssignedAt != nil {
		assignedAt = input.AssignedAt.UTC()
	}

	assignment := &models.Assignment{
		CarID:      input.CarID,
		DriverID:   input.DriverID,
		AssignedBy: actorID,
		AssignedAt: assignedAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.CloseOpenForCar(ctx, input.CarID, actorID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close open assignment for car")
		}
		if _, err := repo.CloseOpenForDriver(ctx, input.DriverID, actorID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close open assignment for driver")
		}
		if _, err := repo.Create(ctx, assignment); err != nil {
			// A racing create that slipped past the closes loses at the
			// partial unique index on open rows.
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "car or driver already has an open assignment")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(assignment), nil
}

// End closes the addressed open assignment. Nothing open is a success, not
// an error, so retries observe the same end state.
func (s *service) End(ctx context.Context, actorID uuid.UUID, input EndAssignmentInput) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CarID == nil && input.AssignmentID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "car_id or assignment_id required")
	}

	at := s.now()
	if input.UnassignedAt != nil {
		at = input.UnassignedAt.UTC()
	}

	if input.AssignmentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.AssignmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if _, err := s.repo.CloseByID(ctx, *input.AssignmentID, actorID, at); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close assignment")
		}
		return nil
	}

	if _, err := s.repo.CloseOpenForCar(ctx, *input.CarID, actorID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close open assignment for car")
	}
	return nil
}

func (s *service) ListOpen(ctx context.Context) ([]OpenAssignmentDTO, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open assignments")
	}
	return open, nil
}

func (s *service) HistoryByCar(ctx context.Context, carID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	if carID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car id required")
	}
	return s.history(ctx, params, func(cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
		return s.repo.HistoryByCar(ctx, carID, cursor, limit)
	})
}

func (s *service) HistoryByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	return s.history(ctx, params, func(cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
		return s.repo.HistoryByDriver(ctx, driverID, cursor, limit)
	})
}

func (s *service) history(ctx context.Context, params pagination.Params, fetch func(*pagination.Cursor, int) ([]models.Assignment, error)) (*HistoryPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := fetch(cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignment history")
	}

	page := &HistoryPage{Assignments: make([]AssignmentDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			next := pagination.EncodeCursor(pagination.Cursor{Timestamp: last.AssignedAt, ID: last.ID})
			page.NextCursor = &next
			break
		}
		page.Assignments = append(page.Assignments, *FromModel(&rows[i]))
	}
	return page, nil
}
