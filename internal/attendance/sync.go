package attendance

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	HalfDayTargetStart = "Start"
	HalfDayTargetEnd   = "End"
)

// LeaveStay describes an approved leave span the attendance calendar
// must reflect.
type LeaveStay struct {
	TenantID   string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  string
	Color      string

	// HalfDay marks one boundary day of the stay as a half day; which
	// one is picked by HalfDayTarget (Start when unset).
	HalfDay       bool
	HalfDayTarget string
}

// Syncer projects approved leaves onto attendance rows, one per day.
type Syncer struct {
	attendance Repository
	logger     *zap.Logger
}

func NewSyncer(attendance Repository, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		attendance: attendance,
		logger:     logger.Named("attendance.syncer"),
	}
}

// SyncLeave upserts one row per day in the stay, inclusive of both
// endpoints. Re-running for the same stay is idempotent.
func (s *Syncer) SyncLeave(ctx context.Context, db *gorm.DB, stay LeaveStay) error {
	attendance := s.attendance.On(db)

	start := midnight(stay.StartDate)
	end := midnight(stay.EndDate)

	halfDayDate := start
	if stay.HalfDayTarget == HalfDayTargetEnd {
		halfDayDate = end
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		status := StatusLeave
		if stay.HalfDay && day.Equal(halfDayDate) {
			status = StatusHalfDay
		}

		err := attendance.UpsertForDate(ctx, &Attendance{
			TenantID:   stay.TenantID,
			EmployeeID: stay.EmployeeID,
			Date:       day,
			Status:     status,
			LeaveType:  stay.LeaveType,
			Color:      stay.Color,
		})
		if err != nil {
			return err
		}
	}

	s.logger.Debug("attendance synced for leave",
		zap.String("tenant_id", stay.TenantID),
		zap.String("employee_id", stay.EmployeeID),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
