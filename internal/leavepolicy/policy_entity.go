package leavepolicy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicableType decides which employees a policy targets.
const (
	ApplicableAll        = "All"
	ApplicableDepartment = "Department"
	ApplicableRole       = "Role"
	ApplicableSpecific   = "Specific"
)

// LeaveRule is one entitlement line inside a policy. Rules live as a
// jsonb array on the policy row, mirroring how tenants edit them as a
// single document.
type LeaveRule struct {
	LeaveType       string   `json:"leaveType"`
	TotalPerYear    *float64 `json:"totalPerYear,omitempty"`
	MonthlyAccrual  bool     `json:"monthlyAccrual"`
	AccrualType     string   `json:"accrualType"`
	Color           string   `json:"color"`
	CarryForward    bool     `json:"carryForward"`
	MaxCarryForward float64  `json:"maxCarryForward"`
}

// Entitlement is the yearly grant, zero when the stored rule carries
// none. A rule without totalPerYear keeps its leave type alive but is
// never used to rewrite a balance row.
func (r LeaveRule) Entitlement() float64 {
	if r.TotalPerYear == nil {
		return 0
	}
	return *r.TotalPerYear
}

type LeavePolicy struct {
	ID             string      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       string      `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	Name           string      `gorm:"type:varchar(150);not null" json:"name"`
	Description    string      `gorm:"type:text" json:"description"`
	ApplicableType string      `gorm:"type:varchar(20);not null;default:All" json:"applicableType"`
	DepartmentIDs  []string    `gorm:"type:jsonb;serializer:json" json:"departmentIds"`
	RoleNames      []string    `gorm:"type:jsonb;serializer:json" json:"roleNames"`
	EmployeeIDs    []string    `gorm:"type:jsonb;serializer:json" json:"employeeIds"`
	Rules          []LeaveRule `gorm:"type:jsonb;serializer:json" json:"rules"`
	IsActive       bool        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}

func (p *LeavePolicy) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasRules reports whether at least one rule names a leave type. Rules
// with an empty leave type are ignored everywhere.
func (p *LeavePolicy) HasRules() bool {
	for _, r := range p.Rules {
		if r.LeaveType != "" {
			return true
		}
	}
	return false
}

// ValidRules filters out malformed entries so downstream math never
// sees a rule without a leave type.
func (p *LeavePolicy) ValidRules() []LeaveRule {
	out := make([]LeaveRule, 0, len(p.Rules))
	for _, r := range p.Rules {
		if r.LeaveType == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DefaultPolicy is what a tenant gets when no usable policy exists at
// enforcement time.
func DefaultPolicy(tenantID string) *LeavePolicy {
	return &LeavePolicy{
		TenantID:       tenantID,
		Name:           "Standard Leave Policy",
		Description:    "Auto-created default leave policy",
		ApplicableType: ApplicableAll,
		IsActive:       true,
		Rules: []LeaveRule{
			{LeaveType: "Casual Leave", TotalPerYear: perYear(12), Color: "#f59e0b"},
			{LeaveType: "Sick Leave", TotalPerYear: perYear(7), Color: "#ef4444"},
			{LeaveType: "Privilege Leave", TotalPerYear: perYear(15), Color: "#10b981"},
		},
	}
}

func perYear(v float64) *float64 {
	return &v
}
