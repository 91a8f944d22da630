package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=settings_repo.go -destination=mock/settings_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	// Get never returns nil settings; a tenant with no stored row gets
	// the defaults.
	Get(ctx context.Context, tenantID string) (*CompanySettings, error)
	Upsert(ctx context.Context, s *CompanySettings) error
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

func (r *repository) Get(ctx context.Context, tenantID string) (*CompanySettings, error) {
	var s CompanySettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Defaults(tenantID), nil
		}
		return nil, err
	}

	if len(s.WeeklyOffDays) == 0 {
		s.WeeklyOffDays = []int{0}
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s *CompanySettings) error {
	existing, err := r.Get(ctx, s.TenantID)
	if err != nil {
		return err
	}
	if existing.ID != "" {
		s.ID = existing.ID
	}
	return r.db.WithContext(ctx).Save(s).Error
}
