package shift

import (
	"context"
	"sort"

	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/store"
)

// Aggregator derives per-employee workload totals from the current shift
// collection. Pure read side: recomputed fully on every call, no cache.
type Aggregator struct {
	store store.ShiftStore
}

func NewAggregator(s store.ShiftStore) *Aggregator {
	return &Aggregator{store: s}
}

// Totals returns one row per employee appearing in any assigned_employees
// set, ordered by total_hours descending. Tie order is unspecified.
func (a *Aggregator) Totals(ctx context.Context) ([]models.AnalyticsRow, error) {
	shifts, err := a.store.FindWhere(ctx, func(s *models.Shift) bool {
		return len(s.AssignedEmployees) > 0
	})
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string]*models.AnalyticsRow)
	for _, s := range shifts {
		hours := s.EndTime.Sub(s.StartTime).Hours()
		for _, employee := range s.AssignedEmployees {
			row, ok := byEmployee[employee]
			if !ok {
				row = &models.AnalyticsRow{Employee: employee}
				byEmployee[employee] = row
			}
			row.TotalShiftsClaimed++
			row.TotalHours += hours
		}
	}

	rows := make([]models.AnalyticsRow, 0, len(byEmployee))
	for _, row := range byEmployee {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalHours > rows[j].TotalHours
	})
	return rows, nil
}
