package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// Repository defines persistence operations for the assignments table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	CloseOpenForCar(ctx context.Context, carID, actorID uuid.UUID, at time.Time) (int64, error)
	CloseOpenForDriver(ctx context.Context, driverID, actorID uuid.UUID, at time.Time) (int64, error)
	CloseByID(ctx context.Context, id, actorID uuid.UUID, at time.Time) (int64, error)
	ListOpen(ctx context.Context) ([]OpenAssignmentDTO, error)
	HistoryByCar(ctx context.Context, carID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error)
	HistoryByDriver(ctx context.Context, driverID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error)
}
