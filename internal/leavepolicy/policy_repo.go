package leavepolicy

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=policy_repo.go -destination=mock/policy_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	FindByIDAndTenant(ctx context.Context, tenantID, id string) (*LeavePolicy, error)
	// FindNewestActiveWithRules returns the most recently created active
	// policy carrying at least one rule. applicableType narrows the
	// search; pass "" for any.
	FindNewestActiveWithRules(ctx context.Context, tenantID, applicableType string) (*LeavePolicy, error)
	ListByTenant(ctx context.Context, tenantID string) ([]LeavePolicy, error)
	Create(ctx context.Context, policy *LeavePolicy) error
	Update(ctx context.Context, policy *LeavePolicy) error
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

func (r *repository) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*LeavePolicy, error) {
	var policy LeavePolicy
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) FindNewestActiveWithRules(ctx context.Context, tenantID, applicableType string) (*LeavePolicy, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("jsonb_array_length(rules) > 0")
	if applicableType != "" {
		query = query.Where("applicable_type = ?", applicableType)
	}

	var policy LeavePolicy
	err := query.Order("created_at DESC").First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID string) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) Create(ctx context.Context, policy *LeavePolicy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *repository) Update(ctx context.Context, policy *LeavePolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&LeavePolicy{}).Error
}
