package holiday

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

type CreateHolidayRequest struct {
	Name     string `json:"name" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Optional bool   `json:"optional"`
}

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock

type Service interface {
	List(ctx context.Context, tenantID string, year int) ([]Holiday, error)
	Create(ctx context.Context, tenantID string, req CreateHolidayRequest) (*Holiday, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type service struct {
	conns    tenantconn.Source
	holidays Repository
	logger   *zap.Logger
}

func NewService(conns tenantconn.Source, holidays Repository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		conns:    conns,
		holidays: holidays,
		logger:   logger.Named("holiday.service"),
	}
}

func (s *service) List(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = time.Now().Year()
	}

	rows, err := s.holidays.On(db).ListByYear(ctx, tenantID, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list holidays", http.StatusInternalServerError)
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, tenantID string, req CreateHolidayRequest) (*Holiday, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperror.InvalidField("Date")
	}

	h := &Holiday{
		TenantID: tenantID,
		Name:     req.Name,
		Date:     date,
		Optional: req.Optional,
	}
	if err := s.holidays.On(db).Create(ctx, h); err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to create holiday", http.StatusInternalServerError)
	}

	s.logger.Info("holiday created",
		zap.String("tenant_id", tenantID),
		zap.String("name", h.Name),
		zap.Time("date", h.Date),
	)

	return h, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id string) error {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return err
	}

	if err := s.holidays.On(db).Delete(ctx, tenantID, id); err != nil {
		return apperror.Wrap(err, apperror.CodePersistence,
			"Failed to delete holiday", http.StatusInternalServerError)
	}
	return nil
}
