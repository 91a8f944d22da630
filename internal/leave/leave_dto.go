package leave

import "github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"

// Actor identifies who is performing a lifecycle operation. Role is
// lowercase ("hr", "admin", "employee", ...).
type Actor struct {
	ID   string
	Role string
}

type ApplyLeaveRequest struct {
	// EmployeeID lets HR apply on behalf of someone; for everyone else
	// it is ignored and the actor applies for themselves.
	EmployeeID     string `json:"employeeId"`
	LeaveType      string `json:"leaveType" binding:"required"`
	StartDate      string `json:"startDate" binding:"required"`
	EndDate        string `json:"endDate"`
	Reason         string `json:"reason"`
	IsHalfDay      bool   `json:"isHalfDay"`
	HalfDayTarget  string `json:"halfDayTarget"`
	HalfDaySession string `json:"halfDaySession"`
}

type EditLeaveRequest struct {
	LeaveType      string `json:"leaveType" binding:"required"`
	StartDate      string `json:"startDate" binding:"required"`
	EndDate        string `json:"endDate"`
	Reason         string `json:"reason"`
	IsHalfDay      bool   `json:"isHalfDay"`
	HalfDayTarget  string `json:"halfDayTarget"`
	HalfDaySession string `json:"halfDaySession"`
}

type ApproveLeaveRequest struct {
	Remark string `json:"remark"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// BalanceView is a balance row decorated with the policy rule color for
// calendar rendering.
type BalanceView struct {
	leavebalance.LeaveBalance
	Color string `json:"color"`
}

// MyBalancesResponse tells the caller both the rows and whether a
// policy backs them, so clients can distinguish "no entitlement" from
// "not yet provisioned".
type MyBalancesResponse struct {
	Balances       []BalanceView  `json:"balances"`
	HasLeavePolicy bool           `json:"hasLeavePolicy"`
	LeavePolicy    *PolicySummary `json:"leavePolicy"`
}

type PolicySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rules any    `json:"rules"`
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
