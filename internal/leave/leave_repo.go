package leave

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	FindByID(ctx context.Context, tenantID, id string) (*Leave, error)
	FindByIDAndEmployee(ctx context.Context, tenantID, employeeID, id string) (*Leave, error)
	// HasOverlapping reports whether a Pending or Approved request of
	// the employee intersects [start, end]. excludeID skips the request
	// being edited.
	HasOverlapping(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, l *Leave) error
	Save(ctx context.Context, l *Leave) error
	ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Leave, error)
	ListByEmployees(ctx context.Context, tenantID string, employeeIDs []string, page, limit int) ([]Leave, int64, error)
	ListByTenant(ctx context.Context, tenantID string, page, limit int) ([]Leave, int64, error)
	ListApproved(ctx context.Context, tenantID, employeeID string) ([]Leave, error)
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

func (r *repository) FindByID(ctx context.Context, tenantID, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDAndEmployee(ctx context.Context, tenantID, employeeID, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND id = ?", tenantID, employeeID, id).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) HasOverlapping(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("tenant_id = ? AND employee_id = ?", tenantID, employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) Save(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Leave, error) {
	var rows []Leave
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ?", tenantID, employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByEmployees(ctx context.Context, tenantID string, employeeIDs []string, page, limit int) ([]Leave, int64, error) {
	if len(employeeIDs) == 0 {
		return nil, 0, nil
	}

	base := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("tenant_id = ? AND employee_id IN ?", tenantID, employeeIDs)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Leave
	err := base.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) ListByTenant(ctx context.Context, tenantID string, page, limit int) ([]Leave, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Leave
	err := base.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) ListApproved(ctx context.Context, tenantID, employeeID string) ([]Leave, error) {
	var rows []Leave
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND status = ?", tenantID, employeeID, StatusApproved).
		Find(&rows).Error
	return rows, err
}
