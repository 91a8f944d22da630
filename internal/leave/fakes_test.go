package leave_test

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/holiday"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leave"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/notification"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/settings"
)

type fakeConns struct {
	db *gorm.DB
}

func (f *fakeConns) Get(tenantID string) (*gorm.DB, error) {
	return f.db, nil
}

// fakeLeaveRepo stores requests in memory and computes overlap the same
// way the SQL does.
type fakeLeaveRepo struct {
	rows   map[string]*leave.Leave
	nextID int
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{rows: make(map[string]*leave.Leave)}
}

func (f *fakeLeaveRepo) On(db *gorm.DB) leave.Repository { return f }

func (f *fakeLeaveRepo) FindByID(ctx context.Context, tenantID, id string) (*leave.Leave, error) {
	if l, ok := f.rows[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLeaveRepo) FindByIDAndEmployee(ctx context.Context, tenantID, employeeID, id string) (*leave.Leave, error) {
	if l, ok := f.rows[id]; ok && l.EmployeeID == employeeID {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLeaveRepo) HasOverlapping(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	for _, l := range f.rows {
		if l.ID == excludeID || l.EmployeeID != employeeID {
			continue
		}
		if l.Status != leave.StatusPending && l.Status != leave.StatusApproved {
			continue
		}
		if !l.StartDate.After(end) && !l.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeaveRepo) Create(ctx context.Context, l *leave.Leave) error {
	f.nextID++
	if l.ID == "" {
		l.ID = fmt.Sprintf("leave-%d", f.nextID)
	}
	copied := *l
	f.rows[l.ID] = &copied
	return nil
}

func (f *fakeLeaveRepo) Save(ctx context.Context, l *leave.Leave) error {
	copied := *l
	f.rows[l.ID] = &copied
	return nil
}

func (f *fakeLeaveRepo) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.rows {
		if l.EmployeeID == employeeID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) ListByEmployees(ctx context.Context, tenantID string, employeeIDs []string, page, limit int) ([]leave.Leave, int64, error) {
	ids := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		ids[id] = true
	}
	var out []leave.Leave
	for _, l := range f.rows {
		if ids[l.EmployeeID] {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) ListByTenant(ctx context.Context, tenantID string, page, limit int) ([]leave.Leave, int64, error) {
	var out []leave.Leave
	for _, l := range f.rows {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) ListApproved(ctx context.Context, tenantID, employeeID string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.rows {
		if l.EmployeeID == employeeID && l.Status == leave.StatusApproved {
			out = append(out, *l)
		}
	}
	return out, nil
}

// fakeBalanceRepo keys rows by employee, leave type and year.
type fakeBalanceRepo struct {
	rows map[string]*leavebalance.LeaveBalance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{rows: make(map[string]*leavebalance.LeaveBalance)}
}

func balanceKey(employeeID, leaveType string, year int) string {
	return fmt.Sprintf("%s/%s/%d", employeeID, leaveType, year)
}

func (f *fakeBalanceRepo) seed(b *leavebalance.LeaveBalance) *fakeBalanceRepo {
	if b.ID == "" {
		b.ID = balanceKey(b.EmployeeID, b.LeaveType, b.Year)
	}
	b.Available = b.Total - b.Used - b.Pending
	f.rows[balanceKey(b.EmployeeID, b.LeaveType, b.Year)] = b
	return f
}

func (f *fakeBalanceRepo) get(employeeID, leaveType string, year int) *leavebalance.LeaveBalance {
	return f.rows[balanceKey(employeeID, leaveType, year)]
}

func (f *fakeBalanceRepo) On(db *gorm.DB) leavebalance.Repository { return f }

func (f *fakeBalanceRepo) FindOne(ctx context.Context, tenantID, employeeID, leaveType string, year int) (*leavebalance.LeaveBalance, error) {
	if b, ok := f.rows[balanceKey(employeeID, leaveType, year)]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeBalanceRepo) FindForYear(ctx context.Context, tenantID, employeeID string, year int) ([]leavebalance.LeaveBalance, error) {
	var out []leavebalance.LeaveBalance
	for _, b := range f.rows {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) Create(ctx context.Context, balance *leavebalance.LeaveBalance) error {
	balance.Available = balance.Total - balance.Used - balance.Pending
	f.seed(balance)
	return nil
}

func (f *fakeBalanceRepo) Save(ctx context.Context, balance *leavebalance.LeaveBalance) error {
	balance.Available = balance.Total - balance.Used - balance.Pending
	copied := *balance
	f.rows[balanceKey(balance.EmployeeID, balance.LeaveType, balance.Year)] = &copied
	return nil
}

func (f *fakeBalanceRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		for k, b := range f.rows {
			if b.ID == id {
				delete(f.rows, k)
			}
		}
	}
	return nil
}

type fakeEmployeeRepo struct {
	byID      map[string]*employee.Employee
	byManager map[string][]employee.Employee
}

func newFakeEmployeeRepo(emps ...*employee.Employee) *fakeEmployeeRepo {
	f := &fakeEmployeeRepo{
		byID:      make(map[string]*employee.Employee),
		byManager: make(map[string][]employee.Employee),
	}
	for _, e := range emps {
		f.byID[e.ID] = e
		if e.ManagerID != nil {
			f.byManager[*e.ManagerID] = append(f.byManager[*e.ManagerID], *e)
		}
	}
	return f
}

func (f *fakeEmployeeRepo) On(db *gorm.DB) employee.Repository { return f }

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, tenantID, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, tenantID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.byID {
		if e.Status == "active" {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListActiveByDepartments(ctx context.Context, tenantID string, departmentIDs []string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByRoles(ctx context.Context, tenantID string, roles []string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByIDs(ctx context.Context, tenantID string, ids []string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByPolicy(ctx context.Context, tenantID, policyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) ListByManager(ctx context.Context, tenantID, managerID string) ([]employee.Employee, error) {
	return f.byManager[managerID], nil
}

func (f *fakeEmployeeRepo) AssignPolicy(ctx context.Context, tenantID, employeeID, policyID string) error {
	if e, ok := f.byID[employeeID]; ok {
		e.LeavePolicyID = &policyID
	}
	return nil
}

type fakePolicyRepo struct {
	byID map[string]*leavepolicy.LeavePolicy
}

func newFakePolicyRepo(policies ...*leavepolicy.LeavePolicy) *fakePolicyRepo {
	f := &fakePolicyRepo{byID: make(map[string]*leavepolicy.LeavePolicy)}
	for _, p := range policies {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePolicyRepo) On(db *gorm.DB) leavepolicy.Repository { return f }

func (f *fakePolicyRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*leavepolicy.LeavePolicy, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, nil
}

func (f *fakePolicyRepo) FindNewestActiveWithRules(ctx context.Context, tenantID, applicableType string) (*leavepolicy.LeavePolicy, error) {
	for _, p := range f.byID {
		if p.IsActive && p.HasRules() && (applicableType == "" || p.ApplicableType == applicableType) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePolicyRepo) ListByTenant(ctx context.Context, tenantID string) ([]leavepolicy.LeavePolicy, error) {
	return nil, nil
}

func (f *fakePolicyRepo) Create(ctx context.Context, policy *leavepolicy.LeavePolicy) error {
	if policy.ID == "" {
		policy.ID = "generated-policy-id"
	}
	f.byID[policy.ID] = policy
	return nil
}

func (f *fakePolicyRepo) Update(ctx context.Context, policy *leavepolicy.LeavePolicy) error {
	f.byID[policy.ID] = policy
	return nil
}

func (f *fakePolicyRepo) Delete(ctx context.Context, tenantID, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeHolidayRepo struct {
	holidays []holiday.Holiday
}

func (f *fakeHolidayRepo) On(db *gorm.DB) holiday.Repository { return f }

func (f *fakeHolidayRepo) FindOnDates(ctx context.Context, tenantID string, dates []time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range f.holidays {
		for _, d := range dates {
			if h.Date.Year() == d.Year() && h.Date.YearDay() == d.YearDay() {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

func (f *fakeHolidayRepo) ListByYear(ctx context.Context, tenantID string, year int) ([]holiday.Holiday, error) {
	return f.holidays, nil
}

func (f *fakeHolidayRepo) Create(ctx context.Context, h *holiday.Holiday) error {
	f.holidays = append(f.holidays, *h)
	return nil
}

func (f *fakeHolidayRepo) Delete(ctx context.Context, tenantID, id string) error {
	return nil
}

type fakeSettingsRepo struct {
	cfg *settings.CompanySettings
}

func (f *fakeSettingsRepo) On(db *gorm.DB) settings.Repository { return f }

func (f *fakeSettingsRepo) Get(ctx context.Context, tenantID string) (*settings.CompanySettings, error) {
	if f.cfg != nil {
		return f.cfg, nil
	}
	return settings.Defaults(tenantID), nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *settings.CompanySettings) error {
	f.cfg = s
	return nil
}

// fakeAttendanceRepo records upserts so tests can assert on the days a
// leave projected onto the calendar.
type fakeAttendanceRepo struct {
	upserts []attendance.Attendance
}

func (f *fakeAttendanceRepo) On(db *gorm.DB) attendance.Repository { return f }

func (f *fakeAttendanceRepo) UpsertForDate(ctx context.Context, a *attendance.Attendance) error {
	f.upserts = append(f.upserts, *a)
	return nil
}

func (f *fakeAttendanceRepo) ListForRange(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	return f.upserts, nil
}

// fakeNotificationRepo records inbox writes so tests can assert on
// recipients.
type fakeNotificationRepo struct {
	created []notification.Notification
}

func (f *fakeNotificationRepo) On(db *gorm.DB) notification.Repository { return f }

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, tenantID, recipientID, role string, limit int) ([]notification.Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, tenantID, recipientID, role, id string) error {
	return nil
}
