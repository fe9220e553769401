package shift

import (
	"time"

	"github.com/shiftsync/shiftsync_backend/internal/models"
)

// HasConflict reports whether the employee is already assigned to any
// shift whose interval overlaps [candidateStart, candidateEnd).
//
// Intervals are half-open: a shift ending exactly when the candidate
// starts does not conflict. Only assigned_employees membership counts;
// pending claims and drop requests are ignored.
func HasConflict(employee string, candidateStart, candidateEnd time.Time, existing []*models.Shift) bool {
	for _, s := range existing {
		if !contains(s.AssignedEmployees, employee) {
			continue
		}
		if s.StartTime.Before(candidateEnd) && candidateStart.Before(s.EndTime) {
			return true
		}
	}
	return false
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
