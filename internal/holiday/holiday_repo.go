package holiday

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	// FindOnDates returns the non-optional holidays falling on any of
	// the given calendar dates.
	FindOnDates(ctx context.Context, tenantID string, dates []time.Time) ([]Holiday, error)
	ListByYear(ctx context.Context, tenantID string, year int) ([]Holiday, error)
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, tenantID, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) On(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindOnDates(ctx context.Context, tenantID string, dates []time.Time) ([]Holiday, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}

	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND optional = ? AND date IN ?", tenantID, false, days).
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) ListByYear(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date < ?", tenantID, from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&Holiday{}).Error
}
