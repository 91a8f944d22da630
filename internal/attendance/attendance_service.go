package attendance

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock

type Service interface {
	// Calendar returns the attendance rows for one employee between
	// from and to inclusive, defaulting to the current month.
	Calendar(ctx context.Context, tenantID, employeeID string, from, to string) ([]Attendance, error)
}

type service struct {
	conns      tenantconn.Source
	attendance Repository
	logger     *zap.Logger
}

func NewService(conns tenantconn.Source, attendance Repository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		conns:      conns,
		attendance: attendance,
		logger:     logger.Named("attendance.service"),
	}
}

func (s *service) Calendar(ctx context.Context, tenantID, employeeID string, from, to string) ([]Attendance, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	if from != "" {
		start, err = time.Parse("2006-01-02", from)
		if err != nil {
			return nil, apperror.InvalidField("From")
		}
	}
	if to != "" {
		end, err = time.Parse("2006-01-02", to)
		if err != nil {
			return nil, apperror.InvalidField("To")
		}
	}

	rows, err := s.attendance.On(db).ListForRange(ctx, tenantID, employeeID, start, end)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list attendance", http.StatusInternalServerError)
	}
	return rows, nil
}
