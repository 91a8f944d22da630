package leavepolicy_test

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/settings"
)

type fakeEmployeeRepo struct {
	findByIDFn                func(ctx context.Context, tenantID, id string) (*employee.Employee, error)
	listActiveFn              func(ctx context.Context, tenantID string) ([]employee.Employee, error)
	listActiveByDepartmentsFn func(ctx context.Context, tenantID string, departmentIDs []string) ([]employee.Employee, error)
	listActiveByRolesFn       func(ctx context.Context, tenantID string, roles []string) ([]employee.Employee, error)
	listActiveByIDsFn         func(ctx context.Context, tenantID string, ids []string) ([]employee.Employee, error)
	listActiveByPolicyFn      func(ctx context.Context, tenantID, policyID string) ([]employee.Employee, error)
	listByManagerFn           func(ctx context.Context, tenantID, managerID string) ([]employee.Employee, error)
	assignPolicyFn            func(ctx context.Context, tenantID, employeeID, policyID string) error
}

func (f *fakeEmployeeRepo) On(db *gorm.DB) employee.Repository { return f }

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, tenantID, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, tenantID, id)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, tenantID string) ([]employee.Employee, error) {
	if f.listActiveFn != nil {
		return f.listActiveFn(ctx, tenantID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByDepartments(ctx context.Context, tenantID string, departmentIDs []string) ([]employee.Employee, error) {
	if f.listActiveByDepartmentsFn != nil {
		return f.listActiveByDepartmentsFn(ctx, tenantID, departmentIDs)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByRoles(ctx context.Context, tenantID string, roles []string) ([]employee.Employee, error) {
	if f.listActiveByRolesFn != nil {
		return f.listActiveByRolesFn(ctx, tenantID, roles)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByIDs(ctx context.Context, tenantID string, ids []string) ([]employee.Employee, error) {
	if f.listActiveByIDsFn != nil {
		return f.listActiveByIDsFn(ctx, tenantID, ids)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListActiveByPolicy(ctx context.Context, tenantID, policyID string) ([]employee.Employee, error) {
	if f.listActiveByPolicyFn != nil {
		return f.listActiveByPolicyFn(ctx, tenantID, policyID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListByManager(ctx context.Context, tenantID, managerID string) ([]employee.Employee, error) {
	if f.listByManagerFn != nil {
		return f.listByManagerFn(ctx, tenantID, managerID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) AssignPolicy(ctx context.Context, tenantID, employeeID, policyID string) error {
	if f.assignPolicyFn != nil {
		return f.assignPolicyFn(ctx, tenantID, employeeID, policyID)
	}
	return nil
}

// fakeBalanceRepo keeps rows in memory so synchronizer tests can assert
// on the final state rather than on call order.
type fakeBalanceRepo struct {
	rows    map[string]*leavebalance.LeaveBalance // keyed by leave type
	nextID  int
	failFor map[string]error // employee ids whose writes fail
	deleted []string
}

func newFakeBalanceRepo(seed ...*leavebalance.LeaveBalance) *fakeBalanceRepo {
	f := &fakeBalanceRepo{
		rows:    make(map[string]*leavebalance.LeaveBalance),
		failFor: make(map[string]error),
	}
	for _, b := range seed {
		f.nextID++
		if b.ID == "" {
			b.ID = b.LeaveType + "-id"
		}
		b.Available = b.Total - b.Used - b.Pending
		f.rows[b.LeaveType] = b
	}
	return f
}

func (f *fakeBalanceRepo) On(db *gorm.DB) leavebalance.Repository { return f }

func (f *fakeBalanceRepo) FindOne(ctx context.Context, tenantID, employeeID, leaveType string, year int) (*leavebalance.LeaveBalance, error) {
	if b, ok := f.rows[leaveType]; ok && b.EmployeeID == employeeID {
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
	if err := f.failFor[balance.EmployeeID]; err != nil {
		return err
	}
	f.nextID++
	if balance.ID == "" {
		balance.ID = balance.LeaveType + "-id"
	}
	balance.Available = balance.Total - balance.Used - balance.Pending
	copied := *balance
	f.rows[balance.LeaveType] = &copied
	return nil
}

func (f *fakeBalanceRepo) Save(ctx context.Context, balance *leavebalance.LeaveBalance) error {
	if err := f.failFor[balance.EmployeeID]; err != nil {
		return err
	}
	balance.Available = balance.Total - balance.Used - balance.Pending
	copied := *balance
	f.rows[balance.LeaveType] = &copied
	return nil
}

func (f *fakeBalanceRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		for lt, b := range f.rows {
			if b.ID == id {
				delete(f.rows, lt)
			}
		}
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakePolicyRepo struct {
	findByIDFn      func(ctx context.Context, tenantID, id string) (*leavepolicy.LeavePolicy, error)
	findNewestFn    func(ctx context.Context, tenantID, applicableType string) (*leavepolicy.LeavePolicy, error)
	listByTenantFn  func(ctx context.Context, tenantID string) ([]leavepolicy.LeavePolicy, error)
	createFn        func(ctx context.Context, policy *leavepolicy.LeavePolicy) error
	updateFn        func(ctx context.Context, policy *leavepolicy.LeavePolicy) error
	deleteFn        func(ctx context.Context, tenantID, id string) error
	createdPolicies []*leavepolicy.LeavePolicy
}

func (f *fakePolicyRepo) On(db *gorm.DB) leavepolicy.Repository { return f }

func (f *fakePolicyRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*leavepolicy.LeavePolicy, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, tenantID, id)
	}
	return nil, nil
}

func (f *fakePolicyRepo) FindNewestActiveWithRules(ctx context.Context, tenantID, applicableType string) (*leavepolicy.LeavePolicy, error) {
	if f.findNewestFn != nil {
		return f.findNewestFn(ctx, tenantID, applicableType)
	}
	return nil, nil
}

func (f *fakePolicyRepo) ListByTenant(ctx context.Context, tenantID string) ([]leavepolicy.LeavePolicy, error) {
	if f.listByTenantFn != nil {
		return f.listByTenantFn(ctx, tenantID)
	}
	return nil, nil
}

func (f *fakePolicyRepo) Create(ctx context.Context, policy *leavepolicy.LeavePolicy) error {
	if f.createFn != nil {
		return f.createFn(ctx, policy)
	}
	if policy.ID == "" {
		policy.ID = "generated-policy-id"
	}
	f.createdPolicies = append(f.createdPolicies, policy)
	return nil
}

func (f *fakePolicyRepo) Update(ctx context.Context, policy *leavepolicy.LeavePolicy) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, policy)
	}
	return nil
}

func (f *fakePolicyRepo) Delete(ctx context.Context, tenantID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, tenantID, id)
	}
	return nil
}

type fakeSettingsRepo struct {
	cfg *settings.CompanySettings
	err error
}

func (f *fakeSettingsRepo) On(db *gorm.DB) settings.Repository { return f }

func (f *fakeSettingsRepo) Get(ctx context.Context, tenantID string) (*settings.CompanySettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg != nil {
		return f.cfg, nil
	}
	return settings.Defaults(tenantID), nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *settings.CompanySettings) error {
	return errors.New("not implemented")
}
