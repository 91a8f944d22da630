package attendance

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	// UpsertForDate writes one attendance row per employee per day.
	// Replaying the same day overwrites status, type, color and note,
	// which keeps leave syncs idempotent.
	UpsertForDate(ctx context.Context, a *Attendance) error
	ListForRange(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Attendance, error)
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

func (r *repository) UpsertForDate(ctx context.Context, a *Attendance) error {
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"},
				{Name: "employee_id"},
				{Name: "date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "leave_type", "color", "note", "updated_at"}),
		}).
		Create(a).Error
}

func (r *repository) ListForRange(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND date >= ? AND date <= ?",
			tenantID, employeeID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
