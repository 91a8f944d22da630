package leavepolicy

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
)

// Enforcer guarantees an employee ends up holding a usable leave
// policy. Enforcement is best effort: a failure is logged and the
// employee is returned as-is, so read paths never break because policy
// repair could not complete.
type Enforcer struct {
	policies  Repository
	employees employee.Repository
	sync      *Synchronizer
	logger    *zap.Logger
	now       func() time.Time
}

func NewEnforcer(
	policies Repository,
	employees employee.Repository,
	sync *Synchronizer,
	logger *zap.Logger,
) *Enforcer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Enforcer{
		policies:  policies,
		employees: employees,
		sync:      sync,
		logger:    logger.Named("leavepolicy.enforcer"),
		now:       time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (e *Enforcer) WithClock(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

// EnsurePolicy verifies the employee's assigned policy still exists and
// carries rules. When it does not, the enforcer picks the newest active
// tenant-wide policy, then any active policy with rules, and as a last
// resort creates the standard default. The chosen policy is assigned
// and the employee's balances for the current cycle year are seeded.
func (e *Enforcer) EnsurePolicy(
	ctx context.Context,
	db *gorm.DB,
	emp *employee.Employee,
	cycleStartMonth int,
) *employee.Employee {
	policies := e.policies.On(db)

	if emp.LeavePolicyID != nil && *emp.LeavePolicyID != "" {
		current, err := policies.FindByIDAndTenant(ctx, emp.TenantID, *emp.LeavePolicyID)
		if err != nil {
			e.logger.Error("failed to verify assigned policy",
				zap.String("tenant_id", emp.TenantID),
				zap.String("employee_id", emp.ID),
				zap.Error(err),
			)
			return emp
		}
		if current != nil && current.HasRules() {
			return emp
		}

		e.logger.Warn("assigned policy is missing or has no rules, repairing",
			zap.String("tenant_id", emp.TenantID),
			zap.String("employee_id", emp.ID),
			zap.String("policy_id", *emp.LeavePolicyID),
		)
	}

	policy, err := e.pick(ctx, db, emp.TenantID)
	if err != nil {
		e.logger.Error("failed to resolve a replacement policy",
			zap.String("tenant_id", emp.TenantID),
			zap.String("employee_id", emp.ID),
			zap.Error(err),
		)
		return emp
	}

	if err := e.employees.On(db).AssignPolicy(ctx, emp.TenantID, emp.ID, policy.ID); err != nil {
		e.logger.Error("failed to assign policy",
			zap.String("tenant_id", emp.TenantID),
			zap.String("employee_id", emp.ID),
			zap.String("policy_id", policy.ID),
			zap.Error(err),
		)
		return emp
	}
	emp.LeavePolicyID = &policy.ID

	year := CycleYear(e.now(), cycleStartMonth)
	if _, err := e.sync.SyncEmployee(ctx, db, emp, policy, year, cycleStartMonth); err != nil {
		e.logger.Error("failed to seed balances after policy assignment",
			zap.String("tenant_id", emp.TenantID),
			zap.String("employee_id", emp.ID),
			zap.String("policy_id", policy.ID),
			zap.Error(err),
		)
		return emp
	}

	e.logger.Info("policy enforced",
		zap.String("tenant_id", emp.TenantID),
		zap.String("employee_id", emp.ID),
		zap.String("policy_id", policy.ID),
		zap.String("policy_name", policy.Name),
	)

	return emp
}

// pick chooses the best available policy, creating the default when the
// tenant has none worth assigning.
func (e *Enforcer) pick(ctx context.Context, db *gorm.DB, tenantID string) (*LeavePolicy, error) {
	policies := e.policies.On(db)

	policy, err := policies.FindNewestActiveWithRules(ctx, tenantID, ApplicableAll)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		return policy, nil
	}

	policy, err = policies.FindNewestActiveWithRules(ctx, tenantID, "")
	if err != nil {
		return nil, err
	}
	if policy != nil {
		return policy, nil
	}

	created := DefaultPolicy(tenantID)
	if err := policies.Create(ctx, created); err != nil {
		return nil, err
	}

	e.logger.Info("created default leave policy",
		zap.String("tenant_id", tenantID),
		zap.String("policy_id", created.ID),
	)

	return created, nil
}
