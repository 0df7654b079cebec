package models

import "time"

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Approval is a leave request waiting on a manager decision. Once approved
// or rejected it disappears from the pending feed; the server owns that
// transition and clients refetch rather than flipping status locally.
type Approval struct {
	ID          string         `json:"id"`
	Requester   Member         `json:"requester"`
	FromDate    time.Time      `json:"fromDate"`
	ToDate      time.Time      `json:"toDate"`
	LeaveType   string         `json:"leaveType"`
	Destination string         `json:"destination,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Status      ApprovalStatus `json:"status"`
}

// Days returns the inclusive day span of the request.
func (a Approval) Days() int {
	if a.ToDate.Before(a.FromDate) {
		return 0
	}
	return int(a.ToDate.Sub(a.FromDate).Hours()/24) + 1
}

// LeaveRecord is one settled (or pending) leave entry in the per-team
// analytics feed.
type LeaveRecord struct {
	ID        string         `json:"id"`
	MemberID  string         `json:"memberId"`
	FromDate  time.Time      `json:"fromDate"`
	ToDate    time.Time      `json:"toDate"`
	LeaveType string         `json:"leaveType"`
	Status    ApprovalStatus `json:"status"`
	Days      int            `json:"days"`
}

// TeamStats is the derived view-model for the dashboard header. It is
// recomputed from the current cache snapshots on every pass and never
// stored, so it cannot go stale independently of its inputs.
type TeamStats struct {
	MemberCount      int            `json:"memberCount"`
	PendingApprovals int            `json:"pendingApprovals"`
	TotalLeaveDays   int            `json:"totalLeaveDays"`
	DaysByType       map[string]int `json:"daysByType"`
	OnLeaveToday     int            `json:"onLeaveToday"`
}
