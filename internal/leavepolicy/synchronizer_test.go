package leavepolicy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func perYear(v float64) *float64 {
	return &v
}

func TestCycleYear(t *testing.T) {
	tests := []struct {
		name       string
		at         time.Time
		startMonth int
		want       int
	}{
		{"calendar cycle", date(2026, time.June, 15), 0, 2026},
		{"calendar cycle january", date(2026, time.January, 1), 0, 2026},
		{"april cycle before start", date(2026, time.February, 10), 3, 2025},
		{"april cycle at start", date(2026, time.April, 1), 3, 2026},
		{"april cycle after start", date(2026, time.November, 30), 3, 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, leavepolicy.CycleYear(tt.at, tt.startMonth))
		})
	}
}

func TestProRate(t *testing.T) {
	monthly := leavepolicy.LeaveRule{
		LeaveType:      "Casual Leave",
		TotalPerYear:   perYear(12),
		MonthlyAccrual: true,
	}

	t.Run("non-monthly rules grant the full amount", func(t *testing.T) {
		rule := leavepolicy.LeaveRule{LeaveType: "Privilege Leave", TotalPerYear: perYear(15)}
		got := leavepolicy.ProRate(rule, date(2026, time.September, 1), 2026, 0)
		assert.Equal(t, 15.0, got)
	})

	t.Run("accrual type monthly triggers pro-rating without the flag", func(t *testing.T) {
		rule := leavepolicy.LeaveRule{LeaveType: "Sick Leave", TotalPerYear: perYear(12), AccrualType: "monthly"}
		got := leavepolicy.ProRate(rule, date(2026, time.July, 1), 2026, 0)
		assert.Equal(t, 7.0, got)
	})

	t.Run("joining before the cycle start grants the full amount", func(t *testing.T) {
		got := leavepolicy.ProRate(monthly, date(2024, time.March, 10), 2026, 0)
		assert.Equal(t, 12.0, got)
	})

	t.Run("mid-year joiner gets remaining months rounded up", func(t *testing.T) {
		// Jul 1 to Dec 31 is 183 days, 6.1 thirty-day months, 7 after
		// rounding, at one day per month.
		got := leavepolicy.ProRate(monthly, date(2026, time.July, 1), 2026, 0)
		assert.Equal(t, 7.0, got)
	})

	t.Run("late joiner still accrues at least one month", func(t *testing.T) {
		got := leavepolicy.ProRate(monthly, date(2026, time.December, 28), 2026, 0)
		assert.Equal(t, 1.0, got)
	})

	t.Run("non-january cycle start shifts the window", func(t *testing.T) {
		// April cycle: joining Oct 1 2026 leaves Oct 1 to Mar 31 2027,
		// 181 days, 7 months after rounding.
		got := leavepolicy.ProRate(monthly, date(2026, time.October, 1), 2026, 3)
		assert.Equal(t, 7.0, got)
	})
}

func testEmployee() *employee.Employee {
	return &employee.Employee{
		ID:          "emp-1",
		TenantID:    "acme",
		FirstName:   "Priya",
		LastName:    "Sharma",
		JoiningDate: date(2024, time.January, 15),
		Status:      "active",
	}
}

func testPolicy() *leavepolicy.LeavePolicy {
	return &leavepolicy.LeavePolicy{
		ID:             "policy-1",
		TenantID:       "acme",
		Name:           "Standard Leave Policy",
		ApplicableType: leavepolicy.ApplicableAll,
		IsActive:       true,
		Rules: []leavepolicy.LeaveRule{
			{LeaveType: "Casual Leave", TotalPerYear: perYear(12)},
			{LeaveType: "Sick Leave", TotalPerYear: perYear(7)},
		},
	}
}

func TestSyncEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing balance rows", func(t *testing.T) {
		balances := newFakeBalanceRepo()
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		result, err := sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, 2, result.BalancesUpdated)
		assert.Equal(t, 0, result.BalancesRemoved)

		casual := balances.rows["Casual Leave"]
		require.NotNil(t, casual)
		assert.Equal(t, 12.0, casual.Total)
		assert.Equal(t, 12.0, casual.Available)
		assert.Equal(t, 2026, casual.Year)
		assert.Equal(t, "policy-1", casual.PolicyID)
	})

	t.Run("second sync with unchanged inputs causes no drift", func(t *testing.T) {
		balances := newFakeBalanceRepo()
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		_, err := sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)
		require.NoError(t, err)

		// Some entitlement gets consumed between the two runs.
		casual := balances.rows["Casual Leave"]
		casual.Used = 2
		casual.Pending = 1
		casual.Available = casual.Total - casual.Used - casual.Pending

		_, err = sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)
		require.NoError(t, err)

		casual = balances.rows["Casual Leave"]
		assert.Equal(t, 12.0, casual.Total)
		assert.Equal(t, 2.0, casual.Used)
		assert.Equal(t, 1.0, casual.Pending)
		assert.Equal(t, casual.Total-casual.Used-casual.Pending, casual.Available)

		sick := balances.rows["Sick Leave"]
		assert.Equal(t, 7.0, sick.Total)
		assert.Equal(t, 7.0, sick.Available)
	})

	t.Run("rules without a yearly amount leave their rows untouched", func(t *testing.T) {
		balances := newFakeBalanceRepo(&leavebalance.LeaveBalance{
			TenantID:   "acme",
			EmployeeID: "emp-1",
			LeaveType:  "Casual Leave",
			Year:       2026,
			Total:      10,
			Used:       3,
		})
		policy := testPolicy()
		policy.Rules[0].TotalPerYear = nil
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		result, err := sync.SyncEmployee(ctx, nil, testEmployee(), policy, 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, result.BalancesUpdated, "only the sick rule is synced")
		assert.Equal(t, 0, result.BalancesRemoved, "the casual row is still granted")

		casual := balances.rows["Casual Leave"]
		require.NotNil(t, casual)
		assert.Equal(t, 10.0, casual.Total)
		assert.Equal(t, 3.0, casual.Used)
	})

	t.Run("preserves used and pending on existing rows", func(t *testing.T) {
		balances := newFakeBalanceRepo(&leavebalance.LeaveBalance{
			TenantID:   "acme",
			EmployeeID: "emp-1",
			LeaveType:  "Casual Leave",
			Year:       2026,
			Total:      10,
			Used:       3,
			Pending:    2,
		})
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		_, err := sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)

		require.NoError(t, err)
		casual := balances.rows["Casual Leave"]
		assert.Equal(t, 12.0, casual.Total)
		assert.Equal(t, 3.0, casual.Used)
		assert.Equal(t, 2.0, casual.Pending)
		assert.Equal(t, 7.0, casual.Available)
	})

	t.Run("total never drops below used plus pending", func(t *testing.T) {
		balances := newFakeBalanceRepo(&leavebalance.LeaveBalance{
			TenantID:   "acme",
			EmployeeID: "emp-1",
			LeaveType:  "Sick Leave",
			Year:       2026,
			Total:      20,
			Used:       9,
			Pending:    2,
		})
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		_, err := sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)

		require.NoError(t, err)
		sick := balances.rows["Sick Leave"]
		assert.Equal(t, 11.0, sick.Total, "policy grants 7 but 11 are already committed")
		assert.Equal(t, 0.0, sick.Available)
	})

	t.Run("removes rows for leave types no longer granted", func(t *testing.T) {
		balances := newFakeBalanceRepo(&leavebalance.LeaveBalance{
			TenantID:   "acme",
			EmployeeID: "emp-1",
			LeaveType:  "Maternity Leave",
			Year:       2026,
			Total:      90,
		})
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		result, err := sync.SyncEmployee(ctx, nil, testEmployee(), testPolicy(), 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, result.BalancesRemoved)
		assert.NotContains(t, balances.rows, "Maternity Leave")
	})

	t.Run("ignores rules without a leave type", func(t *testing.T) {
		policy := testPolicy()
		policy.Rules = append(policy.Rules, leavepolicy.LeaveRule{TotalPerYear: perYear(5)})
		balances := newFakeBalanceRepo()
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, balances, &fakePolicyRepo{}, zap.NewNop())

		result, err := sync.SyncEmployee(ctx, nil, testEmployee(), policy, 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, 2, result.BalancesUpdated)
		assert.Len(t, balances.rows, 2)
	})

	t.Run("reports a warning when the policy has no usable rules", func(t *testing.T) {
		policy := testPolicy()
		policy.Rules = []leavepolicy.LeaveRule{{TotalPerYear: perYear(5)}}
		sync := leavepolicy.NewSynchronizer(&fakeEmployeeRepo{}, newFakeBalanceRepo(), &fakePolicyRepo{}, zap.NewNop())

		result, err := sync.SyncEmployee(ctx, nil, testEmployee(), policy, 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, "Policy has no rules", result.Warning)
		assert.Equal(t, 0, result.BalancesUpdated)
	})
}

func TestSyncAllForPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("specific policy without stored ids falls back to current holders", func(t *testing.T) {
		policy := testPolicy()
		policy.ApplicableType = leavepolicy.ApplicableSpecific

		var fallbackPolicyID string
		employees := &fakeEmployeeRepo{
			listActiveByPolicyFn: func(ctx context.Context, tenantID, policyID string) ([]employee.Employee, error) {
				fallbackPolicyID = policyID
				return []employee.Employee{*testEmployee()}, nil
			},
		}
		sync := leavepolicy.NewSynchronizer(employees, newFakeBalanceRepo(), &fakePolicyRepo{}, zap.NewNop())

		results, err := sync.SyncAllForPolicy(ctx, nil, policy, 2026, 0)

		require.NoError(t, err)
		assert.Equal(t, "policy-1", fallbackPolicyID)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].BalancesUpdated)
	})

	t.Run("one failing employee does not stop the rest", func(t *testing.T) {
		policy := testPolicy()
		first := *testEmployee()
		second := *testEmployee()
		second.ID = "emp-2"
		second.FirstName = "Arun"

		employees := &fakeEmployeeRepo{
			listActiveFn: func(ctx context.Context, tenantID string) ([]employee.Employee, error) {
				return []employee.Employee{first, second}, nil
			},
		}
		balances := newFakeBalanceRepo()
		balances.failFor["emp-1"] = errors.New("write conflict")
		sync := leavepolicy.NewSynchronizer(employees, balances, &fakePolicyRepo{}, zap.NewNop())

		results, err := sync.SyncAllForPolicy(ctx, nil, policy, 2026, 0)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.NotEmpty(t, results[0].Error)
		assert.Empty(t, results[1].Error)
		assert.Equal(t, 2, results[1].BalancesUpdated)
	})
}

func TestRecalculateEmployeeBalances(t *testing.T) {
	newTxHandle := func(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
		t.Helper()
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		db, err := gorm.Open(postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
		require.NoError(t, err)
		return db, mock
	}

	t.Run("runs the sync inside a transaction", func(t *testing.T) {
		db, mock := newTxHandle(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		emp := testEmployee()
		policy := testPolicy()
		emp.LeavePolicyID = &policy.ID

		employees := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, tenantID, id string) (*employee.Employee, error) {
				return emp, nil
			},
		}
		policies := &fakePolicyRepo{
			findByIDFn: func(ctx context.Context, tenantID, id string) (*leavepolicy.LeavePolicy, error) {
				return policy, nil
			},
		}
		sync := leavepolicy.NewSynchronizer(employees, newFakeBalanceRepo(), policies, zap.NewNop())

		err := sync.RecalculateEmployeeBalances(context.Background(), db, "acme", "emp-1", "policy-1", 2026, 0)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the policy is unusable", func(t *testing.T) {
		db, mock := newTxHandle(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		employees := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, tenantID, id string) (*employee.Employee, error) {
				return testEmployee(), nil
			},
		}
		policies := &fakePolicyRepo{
			findByIDFn: func(ctx context.Context, tenantID, id string) (*leavepolicy.LeavePolicy, error) {
				return nil, nil
			},
		}
		sync := leavepolicy.NewSynchronizer(employees, newFakeBalanceRepo(), policies, zap.NewNop())

		err := sync.RecalculateEmployeeBalances(context.Background(), db, "acme", "emp-1", "gone", 2026, 0)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
