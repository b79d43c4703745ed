package stats

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

// Summary carries the dashboard counters.
type Summary struct {
	Cars              int64 `json:"cars"`
	Drivers           int64 `json:"drivers"`
	ActiveAssignments int64 `json:"active_assignments"`
}

// Repository counts fleet rows for the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to the dashboard counters.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Summarize runs the three dashboard counts against the store.
func (r *Repository) Summarize(ctx context.Context) (*Summary, error) {
	var summary Summary

	if err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("is_active = ?", true).
		Count(&summary.Cars).Error; err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("is_active = ?", true).
		Count(&summary.Drivers).Error; err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("unassigned_at IS NULL").
		Count(&summary.ActiveAssignments).Error; err != nil {
		return nil, fmt.Errorf("count open assignments: %w", err)
	}

	return &summary, nil
}

type summarizer interface {
	Summarize(ctx context.Context) (*Summary, error)
}

// Service exposes the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo summarizer
}

// NewService constructs the dashboard service.
func NewService(repo summarizer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.Summarize(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize fleet")
	}
	return summary, nil
}
