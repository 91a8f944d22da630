package leavepolicy

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
)

// CycleYear maps a date onto the leave cycle year it falls in.
// cycleStartMonth is zero based, so with an April cycle (3) a leave in
// February 2026 belongs to cycle year 2025.
func CycleYear(at time.Time, cycleStartMonth int) int {
	year := at.Year()
	if int(at.Month())-1 < cycleStartMonth {
		year--
	}
	return year
}

// ProRate computes the entitlement a rule grants for one cycle year.
// Non-monthly rules always grant the full amount. Monthly rules grant
// the full amount too unless the employee joined after the cycle
// started, in which case the remaining months (30-day buckets, rounded
// up, at least one) are paid out at totalPerYear/12 each, rounded up.
func ProRate(rule LeaveRule, joining time.Time, year, cycleStartMonth int) float64 {
	if !rule.MonthlyAccrual && rule.AccrualType != "monthly" {
		return rule.Entitlement()
	}

	cycleStart := time.Date(year, time.Month(cycleStartMonth+1), 1, 0, 0, 0, 0, time.UTC)
	cycleEnd := cycleStart.AddDate(1, 0, -1)

	if joining.IsZero() || !joining.After(cycleStart) {
		return rule.Entitlement()
	}

	monthsRemaining := math.Ceil(cycleEnd.Sub(joining).Hours() / 24 / 30)
	if monthsRemaining < 1 {
		monthsRemaining = 1
	}

	return math.Ceil(rule.Entitlement() / 12 * monthsRemaining)
}

// SyncResult summarizes one employee's balance reconciliation.
type SyncResult struct {
	EmployeeID      string `json:"employeeId"`
	EmployeeName    string `json:"employeeName"`
	BalancesUpdated int    `json:"balancesUpdated"`
	BalancesRemoved int    `json:"balancesRemoved"`
	Warning         string `json:"warning,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Synchronizer reconciles leave balance rows against policy rules. It
// is stateless; every method operates on the handle it is given so the
// caller decides whether a transaction is in play.
type Synchronizer struct {
	employees employee.Repository
	balances  leavebalance.Repository
	policies  Repository
	logger    *zap.Logger
}

func NewSynchronizer(
	employees employee.Repository,
	balances leavebalance.Repository,
	policies Repository,
	logger *zap.Logger,
) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synchronizer{
		employees: employees,
		balances:  balances,
		policies:  policies,
		logger:    logger.Named("leavepolicy.synchronizer"),
	}
}

// SyncEmployee brings one employee's balance rows for the given cycle
// year in line with the policy rules. Existing used and pending amounts
// are preserved; the total never drops below used+pending. Balance rows
// for leave types no longer in the policy are removed.
func (s *Synchronizer) SyncEmployee(
	ctx context.Context,
	db *gorm.DB,
	emp *employee.Employee,
	policy *LeavePolicy,
	year int,
	cycleStartMonth int,
) (*SyncResult, error) {
	result := &SyncResult{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
	}

	rules := policy.ValidRules()
	if len(rules) == 0 {
		s.logger.Warn("policy has no usable rules",
			zap.String("tenant_id", emp.TenantID),
			zap.String("policy_id", policy.ID),
		)
		result.Warning = "Policy has no rules"
		return result, nil
	}

	balances := s.balances.On(db)
	existing, err := balances.FindForYear(ctx, emp.TenantID, emp.ID, year)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave balances", http.StatusInternalServerError)
	}

	byType := make(map[string]*leavebalance.LeaveBalance, len(existing))
	for i := range existing {
		byType[existing[i].LeaveType] = &existing[i]
	}

	for _, rule := range rules {
		// A rule without a yearly amount keeps its leave type granted
		// but its row is left exactly as it is.
		if rule.TotalPerYear == nil {
			continue
		}

		prorated := ProRate(rule, emp.JoiningDate, year, cycleStartMonth)

		if current, ok := byType[rule.LeaveType]; ok {
			newTotal := prorated
			if floor := current.Used + current.Pending; floor > newTotal {
				newTotal = floor
			}

			current.Total = newTotal
			current.PolicyID = policy.ID
			if err := balances.Save(ctx, current); err != nil {
				return nil, apperror.Wrap(err, apperror.CodePersistence,
					"Failed to update leave balance", http.StatusInternalServerError)
			}
			result.BalancesUpdated++
			continue
		}

		created := &leavebalance.LeaveBalance{
			TenantID:   emp.TenantID,
			EmployeeID: emp.ID,
			PolicyID:   policy.ID,
			LeaveType:  rule.LeaveType,
			Year:       year,
			Total:      prorated,
		}
		if err := balances.Create(ctx, created); err != nil {
			return nil, apperror.Wrap(err, apperror.CodePersistence,
				"Failed to create leave balance", http.StatusInternalServerError)
		}
		result.BalancesUpdated++
	}

	// Drop rows for leave types the policy no longer grants.
	keep := make(map[string]bool, len(rules))
	for _, r := range rules {
		keep[r.LeaveType] = true
	}
	var stale []string
	for _, b := range existing {
		if !keep[b.LeaveType] {
			stale = append(stale, b.ID)
		}
	}
	if len(stale) > 0 {
		if err := balances.DeleteByIDs(ctx, stale); err != nil {
			return nil, apperror.Wrap(err, apperror.CodePersistence,
				"Failed to remove stale leave balances", http.StatusInternalServerError)
		}
		result.BalancesRemoved = len(stale)
	}

	return result, nil
}

// SyncAllForPolicy reconciles every employee the policy targets. A
// failure for one employee is recorded in its result and does not stop
// the rest.
func (s *Synchronizer) SyncAllForPolicy(
	ctx context.Context,
	db *gorm.DB,
	policy *LeavePolicy,
	year int,
	cycleStartMonth int,
) ([]SyncResult, error) {
	targets, err := s.resolveTargets(ctx, db, policy)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, 0, len(targets))
	for i := range targets {
		emp := &targets[i]
		r, err := s.SyncEmployee(ctx, db, emp, policy, year, cycleStartMonth)
		if err != nil {
			s.logger.Error("balance sync failed for employee",
				zap.String("tenant_id", policy.TenantID),
				zap.String("employee_id", emp.ID),
				zap.Error(err),
			)
			results = append(results, SyncResult{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName(),
				Error:        err.Error(),
			})
			continue
		}
		results = append(results, *r)
	}

	return results, nil
}

func (s *Synchronizer) resolveTargets(ctx context.Context, db *gorm.DB, policy *LeavePolicy) ([]employee.Employee, error) {
	employees := s.employees.On(db)

	switch policy.ApplicableType {
	case ApplicableAll:
		return employees.ListActive(ctx, policy.TenantID)
	case ApplicableDepartment:
		return employees.ListActiveByDepartments(ctx, policy.TenantID, policy.DepartmentIDs)
	case ApplicableRole:
		return employees.ListActiveByRoles(ctx, policy.TenantID, policy.RoleNames)
	case ApplicableSpecific:
		if len(policy.EmployeeIDs) > 0 {
			return employees.ListActiveByIDs(ctx, policy.TenantID, policy.EmployeeIDs)
		}
		// No explicit list stored: fall back to whoever already holds
		// this policy.
		return employees.ListActiveByPolicy(ctx, policy.TenantID, policy.ID)
	default:
		return nil, nil
	}
}

// RecalculateEmployeeBalances re-syncs one employee against one policy
// inside a transaction, so a partial reconciliation never lands.
func (s *Synchronizer) RecalculateEmployeeBalances(
	ctx context.Context,
	db *gorm.DB,
	tenantID, employeeID, policyID string,
	year int,
	cycleStartMonth int,
) error {
	return db.Transaction(func(tx *gorm.DB) error {
		emp, err := s.employees.On(tx).FindByID(ctx, tenantID, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return apperror.New(apperror.CodeNotFound,
				"Employee not found", http.StatusNotFound)
		}

		policy, err := s.policies.On(tx).FindByIDAndTenant(ctx, tenantID, policyID)
		if err != nil {
			return err
		}
		if policy == nil || !policy.HasRules() {
			return apperror.New(apperror.CodeNotFound,
				fmt.Sprintf("Policy %s not found or has no rules", policyID),
				http.StatusNotFound)
		}

		_, err = s.SyncEmployee(ctx, tx, emp, policy, year, cycleStartMonth)
		return err
	})
}
