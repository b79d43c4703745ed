package cars

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
)

func setupCarsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS cars (
  id TEXT PRIMARY KEY,
  license_plate TEXT NOT NULL UNIQUE,
  model TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedCar(t *testing.T, db *gorm.DB, plate string, active bool, createdAt time.Time) *models.Car {
	t.Helper()
	car := &models.Car{
		ID:           uuid.New(),
		LicensePlate: plate,
		Model:        "Van",
		IsActive:     active,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(car).Error)
	return car
}

func TestCarsRepoUniquePlateIncludesInactive(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	car := seedCar(t, db, "ABC-1", true, time.Now().UTC())
	matched, err := repo.Deactivate(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, matched)

	// The plate stays reserved even after the soft delete.
	_, err = repo.Create(ctx, CreateCarDTO{LicensePlate: "ABC-1", Model: "Truck"})
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, ""))
}

func TestCarsRepoListActive(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	older := seedCar(t, db, "OLD-1", true, base)
	newer := seedCar(t, db, "NEW-1", true, base.Add(time.Minute))
	seedCar(t, db, "OFF-1", false, base.Add(2*time.Minute))

	rows, err := repo.ListActive(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestCarsRepoDeactivateMissing(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)

	matched, err := repo.Deactivate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, matched)
}
