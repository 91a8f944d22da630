package leave

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/events"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/holiday"
	leaveerrors "github.com/RushikJoshi/GT-HRMS-sub004/internal/leave/errors"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/notification"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/settings"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

const (
	dateLayout   = "2006-01-02"
	defaultColor = "#3b82f6"
)

// hrRoles may apply on behalf of others; their applications are
// auto-approved.
var hrRoles = map[string]bool{
	"hr":    true,
	"admin": true,
	"psa":   true,
}

// approverRoles may approve or reject anyone's request; a direct
// manager may moderate their reports regardless of role.
var approverRoles = map[string]bool{
	"hr":            true,
	"admin":         true,
	"psa":           true,
	"company_admin": true,
	"user":          true,
}

// unpaidCategories are always booked fully unpaid, balance or not.
var unpaidCategories = map[string]bool{
	"LOP":               true,
	"Loss of Pay":       true,
	"Leave without Pay": true,
	"Personal Leave":    true,
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock

type Service interface {
	Apply(ctx context.Context, tenantID string, actor Actor, req ApplyLeaveRequest) (*Leave, error)
	Approve(ctx context.Context, tenantID string, actor Actor, leaveID, remark string) (*Leave, error)
	Reject(ctx context.Context, tenantID string, actor Actor, leaveID, reason string) (*Leave, error)
	Cancel(ctx context.Context, tenantID string, actor Actor, leaveID string) (*Leave, error)
	Edit(ctx context.Context, tenantID string, actor Actor, leaveID string, req EditLeaveRequest) (*Leave, error)

	MyBalances(ctx context.Context, tenantID string, actor Actor) (*MyBalancesResponse, error)
	MyLeaves(ctx context.Context, tenantID string, actor Actor) ([]Leave, error)
	TeamLeaves(ctx context.Context, tenantID string, actor Actor, page, limit int) ([]Leave, int64, error)
	AllLeaves(ctx context.Context, tenantID string, page, limit int) ([]Leave, int64, error)
	ApprovedRanges(ctx context.Context, tenantID string, actor Actor) ([]DateRange, error)
}

type service struct {
	conns      tenantconn.Source
	leaves     Repository
	balances   leavebalance.Repository
	employees  employee.Repository
	policies   leavepolicy.Repository
	holidays   holiday.Repository
	settings   settings.Repository
	enforcer   *leavepolicy.Enforcer
	attendance *attendance.Syncer
	notifier   *notification.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	conns tenantconn.Source,
	leaves Repository,
	balances leavebalance.Repository,
	employees employee.Repository,
	policies leavepolicy.Repository,
	holidays holiday.Repository,
	settingsRepo settings.Repository,
	enforcer *leavepolicy.Enforcer,
	attendanceSyncer *attendance.Syncer,
	notifier *notification.Notifier,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		conns:      conns,
		leaves:     leaves,
		balances:   balances,
		employees:  employees,
		policies:   policies,
		holidays:   holidays,
		settings:   settingsRepo,
		enforcer:   enforcer,
		attendance: attendanceSyncer,
		notifier:   notifier,
		logger:     logger.Named("leave.service"),
		now:        time.Now,
	}
}

// inclusiveDays counts every calendar day in the range, weekends and
// holidays included (the sandwich rule).
func inclusiveDays(start, end time.Time) float64 {
	return math.Ceil(end.Sub(start).Hours()/24) + 1
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeeklyOff(day time.Time, offDays []int) bool {
	for _, d := range offDays {
		if int(day.Weekday()) == d {
			return true
		}
	}
	return false
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.InvalidField("Start Date")
	}
	if endDate == "" {
		return start, start, nil
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.InvalidField("End Date")
	}
	return start, end, nil
}

func (s *service) Apply(ctx context.Context, tenantID string, actor Actor, req ApplyLeaveRequest) (*Leave, error) {
	s.logger.Debug("apply leave",
		zap.String("tenant_id", tenantID),
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
	)

	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	isHR := hrRoles[actor.Role]
	employeeID := actor.ID
	if isHR && req.EmployeeID != "" {
		employeeID = req.EmployeeID
	}

	emp, err := s.employees.On(db).FindByID(ctx, tenantID, employeeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load employee", http.StatusInternalServerError)
	}
	if emp == nil {
		return nil, apperror.New(apperror.CodeNotFound, "Employee not found", http.StatusNotFound)
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}

	// Every applicant must hold a usable policy before balances are
	// consulted.
	emp = s.enforcer.EnsurePolicy(ctx, db, emp, cfg.LeaveCycleStartMonth)

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, leaveerrors.ErrEndBeforeStart
	}
	if !isHR && start.Before(midnight(s.now())) {
		return nil, leaveerrors.ErrPastDate
	}
	if isWeeklyOff(start, cfg.WeeklyOffDays) || isWeeklyOff(end, cfg.WeeklyOffDays) {
		return nil, leaveerrors.ErrWeeklyOff
	}

	holidays, err := s.holidays.On(db).FindOnDates(ctx, tenantID, []time.Time{start, end})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to check holidays", http.StatusInternalServerError)
	}
	if len(holidays) > 0 {
		return nil, leaveerrors.ErrHoliday(holidays[0].Name)
	}

	overlaps, err := s.leaves.On(db).HasOverlapping(ctx, tenantID, employeeID, start, end, "")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to check overlapping requests", http.StatusInternalServerError)
	}
	if overlaps {
		return nil, leaveerrors.ErrOverlap
	}

	days := inclusiveDays(start, end)
	if req.IsHalfDay {
		days -= 0.5
	}
	if days <= 0 {
		return nil, leaveerrors.ErrNoWorkingDays
	}

	year := leavepolicy.CycleYear(start, cfg.LeaveCycleStartMonth)

	var balance *leavebalance.LeaveBalance
	paidDays, unpaidDays := 0.0, days
	if !unpaidCategories[req.LeaveType] {
		balance, err = s.balances.On(db).FindOne(ctx, tenantID, employeeID, req.LeaveType, year)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodePersistence,
				"Failed to load leave balance", http.StatusInternalServerError)
		}
		if balance != nil {
			paidDays = math.Min(balance.Available, days)
			unpaidDays = days - paidDays
		}
	}

	leave := &Leave{
		TenantID:       tenantID,
		EmployeeID:     employeeID,
		LeaveType:      req.LeaveType,
		StartDate:      start,
		EndDate:        end,
		Reason:         req.Reason,
		Status:         StatusPending,
		DaysCount:      days,
		PaidDays:       paidDays,
		UnpaidDays:     unpaidDays,
		HalfDay:        req.IsHalfDay,
		HalfDaySession: req.HalfDaySession,
		AppliedBy:      AppliedByEmployee,
	}
	if req.IsHalfDay {
		leave.HalfDayTarget = req.HalfDayTarget
		if leave.HalfDayTarget == "" {
			leave.HalfDayTarget = attendance.HalfDayTargetStart
			if req.EndDate != "" {
				leave.HalfDayTarget = attendance.HalfDayTargetEnd
			}
		}
	}
	if isHR {
		now := s.now()
		leave.Status = StatusApproved
		leave.AppliedBy = AppliedByHR
		leave.ApprovedAt = &now
		leave.ActionByID = &actor.ID
		leave.HRComment = req.Reason
		if leave.HRComment == "" {
			leave.HRComment = "Applied by HR"
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if balance != nil && paidDays > 0 {
			if leave.Status == StatusApproved {
				balance.Used += paidDays
			} else {
				balance.Pending += paidDays
			}
			if err := s.balances.On(tx).Save(ctx, balance); err != nil {
				return err
			}
		}
		return s.leaves.On(tx).Create(ctx, leave)
	})
	if err != nil {
		return nil, apperror.MapPersistenceError(err, "Failed to record leave request")
	}

	if leave.Status == StatusApproved {
		s.syncAttendance(ctx, db, emp, leave)
	}
	s.notifyApplied(ctx, db, emp, leave, isHR)

	s.logger.Info("leave applied",
		zap.String("tenant_id", tenantID),
		zap.String("leave_id", leave.ID),
		zap.String("employee_id", employeeID),
		zap.String("status", leave.Status),
		zap.Float64("days", days),
		zap.Float64("paid_days", paidDays),
	)

	return leave, nil
}

func (s *service) Approve(ctx context.Context, tenantID string, actor Actor, leaveID, remark string) (*Leave, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	leave, err := s.leaves.On(db).FindByID(ctx, tenantID, leaveID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave request", http.StatusInternalServerError)
	}
	if leave == nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if leave.Status != StatusPending {
		return nil, apperror.New(apperror.CodeInvalidState,
			fmt.Sprintf("Cannot approve request with status: %s", leave.Status),
			http.StatusBadRequest)
	}

	emp, err := s.employees.On(db).FindByID(ctx, tenantID, leave.EmployeeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load employee", http.StatusInternalServerError)
	}
	if !s.canModerate(actor, emp) {
		return nil, leaveerrors.ErrNotAuthorized
	}

	// Calendar year on purpose: approvals look the balance up by the
	// start date's year, not the cycle year, matching how requests have
	// always been settled.
	year := leave.StartDate.Year()
	balance, err := s.balances.On(db).FindOne(ctx, tenantID, leave.EmployeeID, leave.LeaveType, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave balance", http.StatusInternalServerError)
	}

	if remark == "" {
		remark = "Approved"
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if balance != nil {
			balance.Used += leave.DaysCount
			balance.Blocked = math.Max(0, balance.Blocked-leave.DaysCount)
			if err := s.balances.On(tx).Save(ctx, balance); err != nil {
				return err
			}
		}

		now := s.now()
		leave.Status = StatusApproved
		leave.ApprovedAt = &now
		leave.ActionByID = &actor.ID
		leave.AdminRemark = remark
		return s.leaves.On(tx).Save(ctx, leave)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to approve leave request", http.StatusInternalServerError)
	}

	s.notifyDecision(ctx, db, leave, actor, events.TopicLeaveApproved,
		"Leave Approved",
		fmt.Sprintf("Your %s request (%g days) has been approved", leave.LeaveType, leave.DaysCount))

	s.logger.Info("leave approved",
		zap.String("tenant_id", tenantID),
		zap.String("leave_id", leave.ID),
		zap.String("actor_id", actor.ID),
	)

	return leave, nil
}

func (s *service) Reject(ctx context.Context, tenantID string, actor Actor, leaveID, reason string) (*Leave, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	leave, err := s.leaves.On(db).FindByID(ctx, tenantID, leaveID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave request", http.StatusInternalServerError)
	}
	if leave == nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if leave.Status != StatusPending {
		return nil, leaveerrors.ErrNotPending
	}

	emp, err := s.employees.On(db).FindByID(ctx, tenantID, leave.EmployeeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load employee", http.StatusInternalServerError)
	}
	if !s.canModerate(actor, emp) {
		return nil, leaveerrors.ErrNotAuthorized
	}

	year := leave.StartDate.Year()
	balance, err := s.balances.On(db).FindOne(ctx, tenantID, leave.EmployeeID, leave.LeaveType, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave balance", http.StatusInternalServerError)
	}

	if reason == "" {
		reason = "Rejected"
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if balance != nil {
			// Rejection releases the hold only; used stays untouched.
			balance.Blocked = math.Max(0, balance.Blocked-leave.DaysCount)
			if err := s.balances.On(tx).Save(ctx, balance); err != nil {
				return err
			}
		}

		now := s.now()
		leave.Status = StatusRejected
		leave.RejectedAt = &now
		leave.ActionByID = &actor.ID
		leave.RejectionReason = reason
		return s.leaves.On(tx).Save(ctx, leave)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to reject leave request", http.StatusInternalServerError)
	}

	s.notifyDecision(ctx, db, leave, actor, events.TopicLeaveRejected,
		"Leave Rejected",
		fmt.Sprintf("Your %s request (%g days) has been rejected: %s", leave.LeaveType, leave.DaysCount, reason))

	s.logger.Info("leave rejected",
		zap.String("tenant_id", tenantID),
		zap.String("leave_id", leave.ID),
		zap.String("actor_id", actor.ID),
	)

	return leave, nil
}

func (s *service) Cancel(ctx context.Context, tenantID string, actor Actor, leaveID string) (*Leave, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	leave, err := s.leaves.On(db).FindByIDAndEmployee(ctx, tenantID, actor.ID, leaveID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave request", http.StatusInternalServerError)
	}
	if leave == nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if leave.Status == StatusApproved {
		return nil, leaveerrors.ErrApprovedCannotCancel
	}
	if leave.Status == StatusRejected || leave.Status == StatusCancelled {
		return nil, leaveerrors.ErrAlreadyFinalized(leave.Status)
	}

	year := leave.StartDate.Year()
	balance, err := s.balances.On(db).FindOne(ctx, tenantID, actor.ID, leave.LeaveType, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave balance", http.StatusInternalServerError)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if balance != nil {
			balance.Pending -= leave.DaysCount
			if err := s.balances.On(tx).Save(ctx, balance); err != nil {
				return err
			}
		}

		now := s.now()
		leave.Status = StatusCancelled
		leave.CancelledAt = &now
		leave.ActionByID = &actor.ID
		return s.leaves.On(tx).Save(ctx, leave)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to cancel leave request", http.StatusInternalServerError)
	}

	s.notifyDecision(ctx, db, leave, actor, events.TopicLeaveCancelled, "", "")

	s.logger.Info("leave cancelled",
		zap.String("tenant_id", tenantID),
		zap.String("leave_id", leave.ID),
	)

	return leave, nil
}

func (s *service) Edit(ctx context.Context, tenantID string, actor Actor, leaveID string, req EditLeaveRequest) (*Leave, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	leave, err := s.leaves.On(db).FindByIDAndEmployee(ctx, tenantID, actor.ID, leaveID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave request", http.StatusInternalServerError)
	}
	if leave == nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if leave.Status != StatusPending {
		return nil, leaveerrors.ErrNotPending
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, leaveerrors.ErrEndBeforeStart
	}
	if isWeeklyOff(start, cfg.WeeklyOffDays) || isWeeklyOff(end, cfg.WeeklyOffDays) {
		return nil, leaveerrors.ErrWeeklyOff
	}

	overlaps, err := s.leaves.On(db).HasOverlapping(ctx, tenantID, actor.ID, start, end, leave.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to check overlapping requests", http.StatusInternalServerError)
	}
	if overlaps {
		return nil, leaveerrors.ErrOverlap
	}

	newDays := inclusiveDays(start, end)
	if req.IsHalfDay {
		newDays -= 0.5
	}
	if newDays <= 0 {
		return nil, leaveerrors.ErrNoWorkingDays
	}

	year := leavepolicy.CycleYear(start, cfg.LeaveCycleStartMonth)
	oldDays := leave.DaysCount
	oldPaid := leave.PaidDays
	oldType := leave.LeaveType

	err = db.Transaction(func(tx *gorm.DB) error {
		balances := s.balances.On(tx)

		if oldType == req.LeaveType {
			balance, err := balances.FindOne(ctx, tenantID, actor.ID, req.LeaveType, year)
			if err != nil {
				return err
			}
			if balance == nil {
				return leaveerrors.ErrBalanceNotFound(req.LeaveType)
			}
			if balance.Available+oldDays < newDays {
				return leaveerrors.ErrInsufficientBalance(req.LeaveType, balance.Available+oldDays)
			}
			balance.Pending = balance.Pending - oldDays + newDays
			if err := balances.Save(ctx, balance); err != nil {
				return err
			}
		} else {
			oldBalance, err := balances.FindOne(ctx, tenantID, actor.ID, oldType, year)
			if err != nil {
				return err
			}
			newBalance, err := balances.FindOne(ctx, tenantID, actor.ID, req.LeaveType, year)
			if err != nil {
				return err
			}
			if newBalance == nil {
				return leaveerrors.ErrBalanceNotFound(req.LeaveType)
			}
			if newBalance.Available < newDays {
				return leaveerrors.ErrInsufficientBalance(req.LeaveType, newBalance.Available)
			}
			if oldBalance != nil {
				oldBalance.Pending -= oldDays
				if err := balances.Save(ctx, oldBalance); err != nil {
					return err
				}
			}
			newBalance.Pending += newDays
			if err := balances.Save(ctx, newBalance); err != nil {
				return err
			}
		}

		// Recompute the paid/unpaid split against the post-move
		// balance. Same-type edits get the previously-paid amount back
		// as headroom.
		paidDays, unpaidDays := 0.0, newDays
		if !unpaidCategories[req.LeaveType] {
			balance, err := balances.FindOne(ctx, tenantID, actor.ID, req.LeaveType, year)
			if err != nil {
				return err
			}
			available := 0.0
			if balance != nil {
				available = balance.Available
				if oldType == req.LeaveType {
					available += oldPaid
				}
			}
			paidDays = math.Min(available, newDays)
			unpaidDays = newDays - paidDays
		}

		leave.LeaveType = req.LeaveType
		leave.StartDate = start
		leave.EndDate = end
		leave.Reason = req.Reason
		leave.DaysCount = newDays
		leave.PaidDays = paidDays
		leave.UnpaidDays = unpaidDays
		leave.HalfDay = req.IsHalfDay
		leave.HalfDayTarget = ""
		leave.HalfDaySession = ""
		if req.IsHalfDay {
			leave.HalfDayTarget = req.HalfDayTarget
			if leave.HalfDayTarget == "" {
				leave.HalfDayTarget = attendance.HalfDayTargetStart
				if req.EndDate != "" {
					leave.HalfDayTarget = attendance.HalfDayTargetEnd
				}
			}
			leave.HalfDaySession = req.HalfDaySession
		}

		return s.leaves.On(tx).Save(ctx, leave)
	})
	if err != nil {
		if _, ok := err.(*apperror.AppError); ok {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to update leave request", http.StatusInternalServerError)
	}

	s.notifyDecision(ctx, db, leave, actor, events.TopicLeaveEdited, "", "")

	s.logger.Info("leave edited",
		zap.String("tenant_id", tenantID),
		zap.String("leave_id", leave.ID),
		zap.Float64("days", newDays),
	)

	return leave, nil
}

// MyBalances returns the actor's balance rows for the current cycle
// year, self-healing missing rows from the policy rules so the client
// always sees every entitlement line.
func (s *service) MyBalances(ctx context.Context, tenantID string, actor Actor) (*MyBalancesResponse, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.On(db).FindByID(ctx, tenantID, actor.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load employee", http.StatusInternalServerError)
	}
	if emp == nil {
		return nil, apperror.New(apperror.CodeNotFound, "Employee not found", http.StatusNotFound)
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}

	emp = s.enforcer.EnsurePolicy(ctx, db, emp, cfg.LeaveCycleStartMonth)
	year := leavepolicy.CycleYear(s.now(), cfg.LeaveCycleStartMonth)

	balances, err := s.balances.On(db).FindForYear(ctx, tenantID, emp.ID, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave balances", http.StatusInternalServerError)
	}

	var policy *leavepolicy.LeavePolicy
	if emp.LeavePolicyID != nil && *emp.LeavePolicyID != "" {
		policy, err = s.policies.On(db).FindByIDAndTenant(ctx, tenantID, *emp.LeavePolicyID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodePersistence,
				"Failed to load leave policy", http.StatusInternalServerError)
		}
	}

	// Self-heal: any rule without a row gets one at the full yearly
	// amount for the current cycle.
	if policy != nil {
		have := make(map[string]bool, len(balances))
		for _, b := range balances {
			have[b.LeaveType] = true
		}
		for _, rule := range policy.ValidRules() {
			if have[rule.LeaveType] || rule.TotalPerYear == nil {
				continue
			}
			created := &leavebalance.LeaveBalance{
				TenantID:   tenantID,
				EmployeeID: emp.ID,
				PolicyID:   policy.ID,
				LeaveType:  rule.LeaveType,
				Year:       year,
				Total:      rule.Entitlement(),
			}
			if err := s.balances.On(db).Create(ctx, created); err != nil {
				s.logger.Warn("failed to self-heal balance row",
					zap.String("tenant_id", tenantID),
					zap.String("employee_id", emp.ID),
					zap.String("leave_type", rule.LeaveType),
					zap.Error(err),
				)
				continue
			}
			balances = append(balances, *created)
		}
	}

	views := make([]BalanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, BalanceView{
			LeaveBalance: b,
			Color:        ruleColor(policy, b.LeaveType),
		})
	}

	resp := &MyBalancesResponse{
		Balances:       views,
		HasLeavePolicy: emp.LeavePolicyID != nil && *emp.LeavePolicyID != "",
	}
	if policy != nil {
		resp.LeavePolicy = &PolicySummary{
			ID:    policy.ID,
			Name:  policy.Name,
			Rules: policy.Rules,
		}
	}

	return resp, nil
}

func (s *service) MyLeaves(ctx context.Context, tenantID string, actor Actor) ([]Leave, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	rows, err := s.leaves.On(db).ListByEmployee(ctx, tenantID, actor.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list leave requests", http.StatusInternalServerError)
	}
	return rows, nil
}

func (s *service) TeamLeaves(ctx context.Context, tenantID string, actor Actor, page, limit int) ([]Leave, int64, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, 0, err
	}

	reports, err := s.employees.On(db).ListByManager(ctx, tenantID, actor.ID)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list reports", http.StatusInternalServerError)
	}
	if len(reports) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}

	rows, total, err := s.leaves.On(db).ListByEmployees(ctx, tenantID, ids, normalizePage(page), normalizeLimit(limit))
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list team leaves", http.StatusInternalServerError)
	}
	return rows, total, nil
}

func (s *service) AllLeaves(ctx context.Context, tenantID string, page, limit int) ([]Leave, int64, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, 0, err
	}

	rows, total, err := s.leaves.On(db).ListByTenant(ctx, tenantID, normalizePage(page), normalizeLimit(limit))
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list leave requests", http.StatusInternalServerError)
	}
	return rows, total, nil
}

func (s *service) ApprovedRanges(ctx context.Context, tenantID string, actor Actor) ([]DateRange, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	rows, err := s.leaves.On(db).ListApproved(ctx, tenantID, actor.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list approved leaves", http.StatusInternalServerError)
	}

	ranges := make([]DateRange, 0, len(rows))
	for _, r := range rows {
		ranges = append(ranges, DateRange{
			StartDate: r.StartDate.Format(dateLayout),
			EndDate:   r.EndDate.Format(dateLayout),
		})
	}
	return ranges, nil
}

func (s *service) canModerate(actor Actor, emp *employee.Employee) bool {
	if approverRoles[actor.Role] {
		return true
	}
	return emp != nil && emp.ManagerID != nil && *emp.ManagerID == actor.ID
}

func ruleColor(policy *leavepolicy.LeavePolicy, leaveType string) string {
	if policy == nil {
		return defaultColor
	}
	for _, r := range policy.Rules {
		if r.LeaveType == leaveType && r.Color != "" {
			return r.Color
		}
	}
	return defaultColor
}

func (s *service) syncAttendance(ctx context.Context, db *gorm.DB, emp *employee.Employee, leave *Leave) {
	if s.attendance == nil {
		return
	}

	var policy *leavepolicy.LeavePolicy
	if emp.LeavePolicyID != nil && *emp.LeavePolicyID != "" {
		p, err := s.policies.On(db).FindByIDAndTenant(ctx, emp.TenantID, *emp.LeavePolicyID)
		if err != nil {
			s.logger.Warn("color lookup failed", zap.Error(err))
		} else {
			policy = p
		}
	}

	err := s.attendance.SyncLeave(ctx, db, attendance.LeaveStay{
		TenantID:      leave.TenantID,
		EmployeeID:    leave.EmployeeID,
		StartDate:     leave.StartDate,
		EndDate:       leave.EndDate,
		LeaveType:     leave.LeaveType,
		Color:         ruleColor(policy, leave.LeaveType),
		HalfDay:       leave.HalfDay,
		HalfDayTarget: leave.HalfDayTarget,
	})
	if err != nil {
		s.logger.Error("attendance sync failed",
			zap.String("tenant_id", leave.TenantID),
			zap.String("leave_id", leave.ID),
			zap.Error(err),
		)
	}
}

func (s *service) leaveEvent(leave *Leave, actor Actor) *events.LeaveEvent {
	return &events.LeaveEvent{
		TenantID:   leave.TenantID,
		LeaveID:    leave.ID,
		EmployeeID: leave.EmployeeID,
		LeaveType:  leave.LeaveType,
		StartDate:  leave.StartDate,
		EndDate:    leave.EndDate,
		Days:       leave.DaysCount,
		Status:     leave.Status,
		ActorID:    actor.ID,
		OccurredAt: s.now(),
	}
}

func (s *service) notifyApplied(ctx context.Context, db *gorm.DB, emp *employee.Employee, leave *Leave, isHR bool) {
	if s.notifier == nil {
		return
	}

	typeLabel := leave.LeaveType
	if leave.UnpaidDays > 0 {
		typeLabel = fmt.Sprintf("%s (Partial LOP)", leave.LeaveType)
	}

	var note *notification.Notification
	if isHR {
		note = &notification.Notification{
			TenantID:    leave.TenantID,
			RecipientID: leave.EmployeeID,
			Title:       "Leave Applied by HR",
			Message:     fmt.Sprintf("HR has applied and approved %s for you (%g days)", typeLabel, leave.DaysCount),
			Kind:        "leave_request",
		}
	} else {
		// Self-service requests land in the tenant-wide HR review queue.
		note = &notification.Notification{
			TenantID:      leave.TenantID,
			RecipientID:   leave.TenantID,
			RecipientRole: "hr",
			Title:         fmt.Sprintf("Leave Request: %s", emp.FullName()),
			Message:       fmt.Sprintf("%s applied for %s (%g days)", emp.FullName(), typeLabel, leave.DaysCount),
			Kind:          "leave_request",
		}
	}

	s.notifier.Notify(ctx, db, note, events.TopicLeaveApplied, s.leaveEvent(leave, Actor{ID: leave.EmployeeID}))
}

func (s *service) notifyDecision(ctx context.Context, db *gorm.DB, leave *Leave, actor Actor, topic, title, message string) {
	if s.notifier == nil {
		return
	}

	var note *notification.Notification
	if title != "" {
		note = &notification.Notification{
			TenantID:    leave.TenantID,
			RecipientID: leave.EmployeeID,
			Title:       title,
			Message:     message,
			Kind:        "leave_decision",
		}
	}

	s.notifier.Notify(ctx, db, note, topic, s.leaveEvent(leave, actor))
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizeLimit(limit int) int {
	if limit < 1 || limit > 100 {
		return 10
	}
	return limit
}
