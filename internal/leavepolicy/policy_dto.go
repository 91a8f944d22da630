package leavepolicy

// RulePayload mirrors LeaveRule on the wire.
type RulePayload struct {
	LeaveType       string   `json:"leaveType" binding:"required"`
	TotalPerYear    *float64 `json:"totalPerYear" binding:"omitempty,gte=0"`
	MonthlyAccrual  bool     `json:"monthlyAccrual"`
	AccrualType     string   `json:"accrualType"`
	Color           string   `json:"color"`
	CarryForward    bool     `json:"carryForward"`
	MaxCarryForward float64  `json:"maxCarryForward"`
}

type CreatePolicyRequest struct {
	Name           string        `json:"name" binding:"required"`
	Description    string        `json:"description"`
	ApplicableType string        `json:"applicableType"`
	DepartmentIDs  []string      `json:"departmentIds"`
	RoleNames      []string      `json:"roleNames"`
	EmployeeIDs    []string      `json:"employeeIds"`
	Rules          []RulePayload `json:"rules" binding:"required,min=1,dive"`
	IsActive       *bool         `json:"isActive"`
}

type UpdatePolicyRequest struct {
	Name           *string       `json:"name"`
	Description    *string       `json:"description"`
	ApplicableType *string       `json:"applicableType"`
	DepartmentIDs  []string      `json:"departmentIds"`
	RoleNames      []string      `json:"roleNames"`
	EmployeeIDs    []string      `json:"employeeIds"`
	Rules          []RulePayload `json:"rules" binding:"omitempty,min=1,dive"`
	IsActive       *bool         `json:"isActive"`
}

// PolicyWithSync is returned by mutations so callers see both the saved
// policy and the balance reconciliation it triggered.
type PolicyWithSync struct {
	Policy      *LeavePolicy `json:"policy"`
	SyncResults []SyncResult `json:"syncResults"`
}

func rulesFromPayload(payload []RulePayload) []LeaveRule {
	rules := make([]LeaveRule, 0, len(payload))
	for _, p := range payload {
		rules = append(rules, LeaveRule{
			LeaveType:       p.LeaveType,
			TotalPerYear:    p.TotalPerYear,
			MonthlyAccrual:  p.MonthlyAccrual,
			AccrualType:     p.AccrualType,
			Color:           p.Color,
			CarryForward:    p.CarryForward,
			MaxCarryForward: p.MaxCarryForward,
		})
	}
	return rules
}

func validApplicableType(t string) bool {
	switch t {
	case ApplicableAll, ApplicableDepartment, ApplicableRole, ApplicableSpecific:
		return true
	}
	return false
}
