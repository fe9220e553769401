package models

import "time"

// Shift is a scheduled work interval with its employee membership sets.
// The three string slices carry set semantics: no duplicates, insertion
// order preserved for display.
type Shift struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	AssignedEmployees []string  `json:"assigned_employees"`
	PendingEmployees  []string  `json:"pending_employees"`
	DropRequests      []string  `json:"drop_requests"`
}

// Clone returns a deep copy so callers can mutate the result without
// touching shared state.
func (s *Shift) Clone() *Shift {
	out := *s
	out.AssignedEmployees = append([]string(nil), s.AssignedEmployees...)
	out.PendingEmployees = append([]string(nil), s.PendingEmployees...)
	out.DropRequests = append([]string(nil), s.DropRequests...)
	return &out
}

// AddToSet appends value to set unless it is already present.
func AddToSet(set []string, value string) []string {
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

// Pull removes every occurrence of value from set.
func Pull(set []string, value string) []string {
	out := set[:0]
	for _, v := range set {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// ShiftCreate is the payload for creating a new shift.
type ShiftCreate struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ShiftUpdate replaces title and times in place; membership is untouched.
type ShiftUpdate struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ApprovalAction is a manager's decision on a pending claim or drop
// request. Transient: consumed once per review call, never stored.
type ApprovalAction struct {
	EmployeeName string `json:"employee_name"`
	Action       string `json:"action"` // "approve" or "deny"
}

// AnalyticsRow is a derived per-employee workload summary.
type AnalyticsRow struct {
	Employee           string  `json:"employee"`
	TotalShiftsClaimed int     `json:"total_shifts_claimed"`
	TotalHours         float64 `json:"total_hours"`
}

// AuditLogEntry records one workflow action. Append-only.
type AuditLogEntry struct {
	ID            int       `json:"id,omitempty"`
	Action        string    `json:"action"`
	User          string    `json:"user"`
	TargetShiftID string    `json:"target_shift_id"`
	Timestamp     time.Time `json:"timestamp"`
}
