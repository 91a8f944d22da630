package settings

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

type UpdateSettingsRequest struct {
	LeaveCycleStartMonth *int  `json:"leaveCycleStartMonth" binding:"omitempty,min=0,max=11"`
	WeeklyOffDays        []int `json:"weeklyOffDays" binding:"omitempty,dive,min=0,max=6"`
}

//go:generate mockgen -source=settings_service.go -destination=mock/settings_service_mock.go -package=mock

type Service interface {
	Get(ctx context.Context, tenantID string) (*CompanySettings, error)
	Update(ctx context.Context, tenantID string, req UpdateSettingsRequest) (*CompanySettings, error)
}

type service struct {
	conns    tenantconn.Source
	settings Repository
	logger   *zap.Logger
}

func NewService(conns tenantconn.Source, settingsRepo Repository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		conns:    conns,
		settings: settingsRepo,
		logger:   logger.Named("settings.service"),
	}
}

func (s *service) Get(ctx context.Context, tenantID string) (*CompanySettings, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}
	return cfg, nil
}

func (s *service) Update(ctx context.Context, tenantID string, req UpdateSettingsRequest) (*CompanySettings, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	settings := s.settings.On(db)
	cfg, err := settings.Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}

	if req.LeaveCycleStartMonth != nil {
		cfg.LeaveCycleStartMonth = *req.LeaveCycleStartMonth
	}
	if req.WeeklyOffDays != nil {
		cfg.WeeklyOffDays = req.WeeklyOffDays
	}

	if err := settings.Upsert(ctx, cfg); err != nil {
		return nil, apperror.MapPersistenceError(err, "Failed to save company settings")
	}

	s.logger.Info("company settings updated",
		zap.String("tenant_id", tenantID),
		zap.Int("cycle_start_month", cfg.LeaveCycleStartMonth),
		zap.Ints("weekly_off_days", cfg.WeeklyOffDays),
	)

	return cfg, nil
}
