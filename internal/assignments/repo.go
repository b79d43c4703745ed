package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CloseOpenForCar terminates the open assignment referencing the car, if
// any, and reports how many rows were closed.
func (r *repository) CloseOpenForCar(ctx context.Context, carID, actorID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("car_id = ? AND unassigned_at IS NULL", carID).
		Updates(map[string]any{
			"unassigned_at": at,
			"unassigned_by": actorID,
		})
	return result.RowsAffected, result.Error
}

// CloseOpenForDriver terminates the open assignment referencing the driver.
func (r *repository) CloseOpenForDriver(ctx context.Context, driverID, actorID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("driver_id = ? AND unassigned_at IS NULL", driverID).
		Updates(map[string]any{
			"unassigned_at": at,
			"unassigned_by": actorID,
		})
	return result.RowsAffected, result.Error
}

// CloseByID terminates a single assignment only while it is still open.
func (r *repository) CloseByID(ctx context.Context, id, actorID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND unassigned_at IS NULL", id).
		Updates(map[string]any{
			"unassigned_at": at,
			"unassigned_by": actorID,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) ListOpen(ctx context.Context) ([]OpenAssignmentDTO, error) {
	type openRow struct {
		ID              uuid.UUID
		CarID           uuid.UUID
		DriverID        uuid.UUID
		AssignedBy      uuid.UUID
		AssignedAt      time.Time
		CarLicensePlate string
		CarModel        string
		DriverName      string
	}

	var rows []openRow
	err := r.db.WithContext(ctx).
		Table("assignments").
		Select(`assignments.id, assignments.car_id, assignments.driver_id,
			assignments.assigned_by, assignments.assigned_at,
			cars.license_plate AS car_license_plate, cars.model AS car_model,
			drivers.name AS driver_name`).
		Joins("JOIN cars ON cars.id = assignments.car_id").
		Joins("JOIN drivers ON drivers.id = assignments.driver_id").
		Where("assignments.unassigned_at IS NULL").
		Order("assignments.assigned_at DESC, assignments.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]OpenAssignmentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, OpenAssignmentDTO{
			AssignmentDTO: AssignmentDTO{
				ID:         row.ID,
				CarID:      row.CarID,
				DriverID:   row.DriverID,
				AssignedBy: row.AssignedBy,
				AssignedAt: row.AssignedAt,
			},
			CarLicensePlate: row.CarLicensePlate,
			CarModel:        row.CarModel,
			DriverName:      row.DriverName,
		})
	}
	return out, nil
}

func (r *repository) HistoryByCar(ctx context.Context, carID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
	return r.history(ctx, "car_id = ?", carID, cursor, limit)
}

func (r *repository) HistoryByDriver(ctx context.Context, driverID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
	return r.history(ctx, "driver_id = ?", driverID, cursor, limit)
}

func (r *repository) history(ctx context.Context, cond string, id uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).
		Where(cond, id).
		Order("assigned_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(assigned_at, id) < (?, ?)",
			cursor.Timestamp, cursor.ID,
		)
	}

	var rows []models.Assignment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
