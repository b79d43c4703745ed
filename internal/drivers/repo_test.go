package drivers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

func setupDriversTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS drivers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedDriver(t *testing.T, db *gorm.DB, name string, active bool, createdAt time.Time) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  active,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(driver).Error)
	return driver
}

func TestDriversRepoCreatePersistsPhone(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	phone := "+39 055 123456"
	created, err := repo.Create(ctx, CreateDriverDTO{Name: "Alice", Phone: &phone})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	require.NotNil(t, found.Phone)
	assert.Equal(t, phone, *found.Phone)
	assert.True(t, found.IsActive)
}

func TestDriversRepoListActivePagination(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	first := seedDriver(t, db, "Alice", true, base)
	second := seedDriver(t, db, "Bob", true, base.Add(time.Minute))
	third := seedDriver(t, db, "Carol", true, base.Add(2*time.Minute))
	seedDriver(t, db, "Dormant", false, base.Add(3*time.Minute))

	rows, err := repo.ListActive(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, third.ID, rows[0].ID)
	assert.Equal(t, second.ID, rows[1].ID)

	cursor := &pagination.Cursor{Timestamp: rows[1].CreatedAt, ID: rows[1].ID}
	rows, err = repo.ListActive(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
}

func TestDriversRepoDeactivate(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	driver := seedDriver(t, db, "Alice", true, time.Now().UTC())

	matched, err := repo.Deactivate(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, matched)

	found, err := repo.FindByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	// Repeat flips nothing new but still matches the row.
	matched, err = repo.Deactivate(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = repo.Deactivate(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, matched)
}
