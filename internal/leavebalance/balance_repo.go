package leavebalance

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	FindOne(ctx context.Context, tenantID, employeeID, leaveType string, year int) (*LeaveBalance, error)
	FindForYear(ctx context.Context, tenantID, employeeID string, year int) ([]LeaveBalance, error)
	Create(ctx context.Context, balance *LeaveBalance) error
	Save(ctx context.Context, balance *LeaveBalance) error
	DeleteByIDs(ctx context.Context, ids []string) error
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

func (r *repository) FindOne(ctx context.Context, tenantID, employeeID, leaveType string, year int) (*LeaveBalance, error) {
	var balance LeaveBalance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND leave_type = ? AND year = ?",
			tenantID, employeeID, leaveType, year).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) FindForYear(ctx context.Context, tenantID, employeeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND year = ?", tenantID, employeeID, year).
		Find(&balances).Error
	return balances, err
}

func (r *repository) Create(ctx context.Context, balance *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

func (r *repository) Save(ctx context.Context, balance *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&LeaveBalance{}, "id IN ?", ids).Error
}
