package events

import "time"

// Kafka topics fanned out by the outbox worker.
const (
	TopicLeaveApplied   = "hrms.leave.applied"
	TopicLeaveApproved  = "hrms.leave.approved"
	TopicLeaveRejected  = "hrms.leave.rejected"
	TopicLeaveCancelled = "hrms.leave.cancelled"
	TopicLeaveEdited    = "hrms.leave.edited"
)

// LeaveEvent is the payload shared by every leave lifecycle topic.
type LeaveEvent struct {
	TenantID   string    `json:"tenantId"`
	LeaveID    string    `json:"leaveId"`
	EmployeeID string    `json:"employeeId"`
	LeaveType  string    `json:"leaveType"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Days       float64   `json:"days"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actorId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
