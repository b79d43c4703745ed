package assignments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type stubAssignmentsRepo struct {
	calls       []string
	assignments map[uuid.UUID]*models.Assignment
	createErr   error
}

func newStubAssignmentsRepo() *stubAssignmentsRepo {
	return &stubAssignmentsRepo{assignments: make(map[uuid.UUID]*models.Assignment)}
}

func (s *stubAssignmentsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAssignmentsRepo) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	s.calls = append(s.calls, "create")
	if s.createErr != nil {
		return nil, s.createErr
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	s.assignments[assignment.ID] = assignment
	return assignment, nil
}

func (s *stubAssignmentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	assignment, ok := s.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (s *stubAssignmentsRepo) CloseOpenForCar(ctx context.Context, carID, actorID uuid.UUID, at time.Time) (int64, error) {
	s.calls = append(s.calls, "close_car")
	return s.closeWhere(func(a *models.Assignment) bool { return a.CarID == carID }, actorID, at), nil
}

func (s *stubAssignmentsRepo) CloseOpenForDriver(ctx context.Context, driverID, actorID uuid.UUID, at time.Time) (int64, error) {
	s.calls = append(s.calls, "close_driver")
	return s.closeWhere(func(a *models.Assignment) bool { return a.DriverID == driverID }, actorID, at), nil
}

func (s *stubAssignmentsRepo) CloseByID(ctx context.Context, id, actorID uuid.UUID, at time.Time) (int64, error) {
	s.calls = append(s.calls, "close_id")
	return s.closeWhere(func(a *models.Assignment) bool { return a.ID == id }, actorID, at), nil
}

func (s *stubAssignmentsRepo) closeWhere(match func(*models.Assignment) bool, actorID uuid.UUID, at time.Time) int64 {
	var closed int64
	for _, a := range s.assignments {
		if a.Open() && match(a) {
			ts := at
			actor := actorID
			a.UnassignedAt = &ts
			a.UnassignedBy = &actor
			closed++
		}
	}
	return closed
}

func (s *stubAssignmentsRepo) ListOpen(ctx context.Context) ([]OpenAssignmentDTO, error) {
	var out []OpenAssignmentDTO
	for _, a := range s.assignments {
		if a.Open() {
			out = append(out, OpenAssignmentDTO{AssignmentDTO: *FromModel(a)})
		}
	}
	return out, nil
}

func (s *stubAssignmentsRepo) HistoryByCar(ctx context.Context, carID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.CarID == carID {
			out = append(out, *a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubAssignmentsRepo) HistoryByDriver(ctx context.Context, driverID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.DriverID == driverID {
			out = append(out, *a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubCarFinder struct {
	cars map[uuid.UUID]*models.Car
}

func (s *stubCarFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	car, ok := s.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return car, nil
}

type stubDriverFinder struct {
	drivers map[uuid.UUID]*models.Driver
}

func (s *stubDriverFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	driver, ok := s.drivers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return driver, nil
}

type serviceFixture struct {
	svc    Service
	repo   *stubAssignmentsRepo
	car    *models.Car
	driver *models.Driver
	actor  uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	car := &models.Car{ID: uuid.New(), LicensePlate: "ABC-1", Model: "Van", IsActive: true}
	driver := &models.Driver{ID: uuid.New(), Name: "Alice", IsActive: true}
	repo := newStubAssignmentsRepo()

	svc, err := NewService(ServiceParams{
		Tx:      stubTxRunner{},
		Repo:    repo,
		Cars:    &stubCarFinder{cars: map[uuid.UUID]*models.Car{car.ID: car}},
		Drivers: &stubDriverFinder{drivers: map[uuid.UUID]*models.Driver{driver.ID: driver}},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &serviceFixture{svc: svc, repo: repo, car: car, driver: driver, actor: uuid.New()}
}

func assignmentsAssertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error with code %s, got %v", code, err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCreateAssignmentClosesBeforeInsert(t *testing.T) {
	f := newServiceFixture(t)

	created, err := f.svc.Create(context.Background(), f.actor, CreateAssignmentInput{
		CarID:    f.car.ID,
		DriverID: f.driver.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.AssignedBy != f.actor {
		t.Fatalf("assigned_by must record the actor, got %s", created.AssignedBy)
	}

	want := []string{"close_car", "close_driver", "create"}
	if len(f.repo.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, f.repo.calls)
	}
	for i, call := range want {
		if f.repo.calls[i] != call {
			t.Fatalf("expected calls %v, got %v", want, f.repo.calls)
		}
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.Nil, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.Create(ctx, f.actor, CreateAssignmentInput{DriverID: f.driver.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateAssignmentUnknownEntities(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: uuid.New(), DriverID: f.driver.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: uuid.New()})
	assignmentsAssertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateAssignmentInactiveEntities(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.car.IsActive = false
	_, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeNotFound)

	f.car.IsActive = true
	f.driver.IsActive = false
	_, err = f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	assignmentsAssertCode(t, err, pkgerrors.CodeNotFound)

	if len(f.repo.calls) != 0 {
		t.Fatalf("precondition failures must not touch assignment rows, got %v", f.repo.calls)
	}
}

func TestReassignmentFreesPreviousDriver(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Same car, different driver: the first pairing must close.
	other := &models.Driver{ID: uuid.New(), Name: "Bob", IsActive: true}
	f.svc.(*service).drivers.(*stubDriverFinder).drivers[other.ID] = other

	second, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: other.ID})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if f.repo.assignments[first.ID].Open() {
		t.Fatal("previous assignment must be closed by the reassignment")
	}
	if !f.repo.assignments[second.ID].Open() {
		t.Fatal("new assignment must be open")
	}

	open, err := f.svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen: %v", err)
	}
	if len(open) != 1 || open[0].ID != second.ID {
		t.Fatalf("expected exactly the new assignment open, got %+v", open)
	}
}

func TestEndAssignmentIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	carID := f.car.ID
	if err := f.svc.End(ctx, f.actor, EndAssignmentInput{CarID: &carID}); err != nil {
		t.Fatalf("End: %v", err)
	}
	closedAt := *f.repo.assignments[created.ID].UnassignedAt

	// A second call is a success and leaves the close timestamp alone.
	if err := f.svc.End(ctx, f.actor, EndAssignmentInput{CarID: &carID}); err != nil {
		t.Fatalf("second End: %v", err)
	}
	if !f.repo.assignments[created.ID].UnassignedAt.Equal(closedAt) {
		t.Fatal("repeated End must not rewrite the close timestamp")
	}
}

func TestEndAssignmentByID(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actor, CreateAssignmentInput{CarID: f.car.ID, DriverID: f.driver.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.End(ctx, f.actor, EndAssignmentInput{AssignmentID: &created.ID}); err != nil {
		t.Fatalf("End: %v", err)
	}
	if f.repo.assignments[created.ID].Open() {
		t.Fatal("assignment must be closed")
	}

	// Already closed: still a success.
	if err := f.svc.End(ctx, f.actor, EndAssignmentInput{AssignmentID: &created.ID}); err != nil {
		t.Fatalf("second End: %v", err)
	}

	missing := uuid.New()
	err = f.svc.End(ctx, f.actor, EndAssignmentInput{AssignmentID: &missing})
	assignmentsAssertCode(t, err, pkgerrors.CodeNotFound)
}

func TestEndAssignmentRequiresAddress(t *testing.T) {
	f := newServiceFixture(t)

	err := f.svc.End(context.Background(), f.actor, EndAssignmentInput{})
	assignmentsAssertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateAssignmentRollsBackOnFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.createErr = gorm.ErrInvalidData

	_, err := f.svc.Create(context.Background(), f.actor, CreateAssignmentInput{
		CarID:    f.car.ID,
		DriverID: f.driver.ID,
	})
	assignmentsAssertCode(t, err, pkgerrors.CodeDependency)
}

func TestCreateAssignmentRaceLosesAsConflict(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.createErr = errors.New(`duplicate key value violates unique constraint "assignments_open_car_idx" (SQLSTATE 23505)`)

	_, err := f.svc.Create(context.Background(), f.actor, CreateAssignmentInput{
		CarID:    f.car.ID,
		DriverID: f.driver.ID,
	})
	assignmentsAssertCode(t, err, pkgerrors.CodeConflict)
}
