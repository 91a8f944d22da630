package employee

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock

// Repository reads and writes employee rows on whichever tenant handle
// it is bound to via On. The zero-value binding is invalid; services
// must bind before calling.
type Repository interface {
	On(db *gorm.DB) Repository

	FindByID(ctx context.Context, tenantID, id string) (*Employee, error)
	ListActive(ctx context.Context, tenantID string) ([]Employee, error)
	ListActiveByDepartments(ctx context.Context, tenantID string, departmentIDs []string) ([]Employee, error)
	ListActiveByRoles(ctx context.Context, tenantID string, roles []string) ([]Employee, error)
	ListActiveByIDs(ctx context.Context, tenantID string, ids []string) ([]Employee, error)
	ListActiveByPolicy(ctx context.Context, tenantID, policyID string) ([]Employee, error)
	ListByManager(ctx context.Context, tenantID, managerID string) ([]Employee, error)
	AssignPolicy(ctx context.Context, tenantID, employeeID, policyID string) error
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

func (r *repository) FindByID(ctx context.Context, tenantID, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *repository) ListActive(ctx context.Context, tenantID string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, "active").
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListActiveByDepartments(ctx context.Context, tenantID string, departmentIDs []string) ([]Employee, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND department_id IN ?", tenantID, "active", departmentIDs).
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListActiveByRoles(ctx context.Context, tenantID string, roles []string) ([]Employee, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND role IN ?", tenantID, "active", roles).
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListActiveByIDs(ctx context.Context, tenantID string, ids []string) ([]Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND id IN ?", tenantID, "active", ids).
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListActiveByPolicy(ctx context.Context, tenantID, policyID string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND leave_policy_id = ?", tenantID, "active", policyID).
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListByManager(ctx context.Context, tenantID, managerID string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND manager_id = ?", tenantID, managerID).
		Find(&emps).Error
	return emps, err
}

func (r *repository) AssignPolicy(ctx context.Context, tenantID, employeeID, policyID string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("tenant_id = ? AND id = ?", tenantID, employeeID).
		Update("leave_policy_id", policyID).Error
}
