package shift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/store"
)

var (
	// ErrConflict means the employee is already working an overlapping shift.
	ErrConflict = errors.New("schedule conflict")
	// ErrValidation marks malformed input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")
)

// Broadcast event actions pushed to viewers.
const (
	EventNewShift    = "NEW_SHIFT"
	EventUpdateShift = "UPDATE_SHIFT"
	EventDeleteShift = "DELETE_SHIFT"
)

const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
)

// Event is the payload fanned out to every live viewer connection.
type Event struct {
	Action  string        `json:"action"`
	Shift   *models.Shift `json:"shift,omitempty"`
	ShiftID string        `json:"shift_id,omitempty"`
}

// Broadcaster pushes a serialized event to all connected viewers.
type Broadcaster interface {
	Broadcast(message []byte)
}

// AuditSink records a workflow action. Implementations must never block
// the caller or surface errors; a dropped record is dropped for good.
type AuditSink interface {
	Record(action, user, shiftID string)
}

// Workflow is the claim/approve/deny/drop state machine over the shift
// collection. The per-employee state for a shift is implicit in which
// membership set holds the employee: none, pending, assigned or
// drop-requested. All mutations go through the store's atomic
// FindAndUpdate, so no lock is held here.
type Workflow struct {
	store store.ShiftStore
	audit AuditSink
	hub   Broadcaster
}

func NewWorkflow(s store.ShiftStore, audit AuditSink, hub Broadcaster) *Workflow {
	return &Workflow{store: s, audit: audit, hub: hub}
}

// Create validates and inserts a new shift with empty membership sets.
func (w *Workflow) Create(ctx context.Context, req models.ShiftCreate) (*models.Shift, error) {
	if len(req.Title) < 3 || len(req.Title) > 50 {
		return nil, fmt.Errorf("%w: title must be 3-50 characters", ErrValidation)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	}

	shift := &models.Shift{
		ID:                uuid.NewString(),
		Title:             req.Title,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		AssignedEmployees: []string{},
		PendingEmployees:  []string{},
		DropRequests:      []string{},
	}
	if err := w.store.Insert(ctx, shift); err != nil {
		return nil, err
	}

	w.broadcast(Event{Action: EventNewShift, Shift: shift})
	return shift, nil
}

// List returns up to limit shifts (capped at the store default).
func (w *Workflow) List(ctx context.Context) ([]*models.Shift, error) {
	shifts, err := w.store.FindAll(ctx, store.DefaultListLimit)
	if err != nil {
		return nil, err
	}
	if shifts == nil {
		shifts = []*models.Shift{}
	}
	return shifts, nil
}

// Update replaces title and times in place; membership sets are untouched.
func (w *Workflow) Update(ctx context.Context, id string, req models.ShiftUpdate) (*models.Shift, error) {
	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.Title = req.Title
		s.StartTime = req.StartTime
		s.EndTime = req.EndTime
	})
	if err != nil {
		return nil, err
	}
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

// Delete removes the shift permanently.
func (w *Workflow) Delete(ctx context.Context, id, actor string) error {
	if err := w.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	w.audit.Record("Deleted Shift", actor, id)
	w.broadcast(Event{Action: EventDeleteShift, ShiftID: id})
	return nil
}

// RequestClaim puts the employee into the pending queue after the overlap
// check. The check scans only shifts the employee is assigned to right
// now; pending and drop-requested shifts do not block a claim.
func (w *Workflow) RequestClaim(ctx context.Context, id, employee string) (*models.Shift, error) {
	target, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assigned, err := w.store.FindWhere(ctx, func(s *models.Shift) bool {
		return contains(s.AssignedEmployees, employee)
	})
	if err != nil {
		return nil, err
	}
	if HasConflict(employee, target.StartTime, target.EndTime, assigned) {
		return nil, fmt.Errorf("%w: already working during this time", ErrConflict)
	}

	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.PendingEmployees = models.AddToSet(s.PendingEmployees, employee)
	})
	if err != nil {
		return nil, err
	}

	w.audit.Record("Requested Shift", employee, id)
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

// ReviewClaim removes the employee from the pending queue no matter what
// the decision is, and on approve additionally assigns them. Overlap is
// not re-checked here: approval trusts the request-time check.
func (w *Workflow) ReviewClaim(ctx context.Context, id, manager string, action models.ApprovalAction) (*models.Shift, error) {
	approve := action.Action == ActionApprove
	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.PendingEmployees = models.Pull(s.PendingEmployees, action.EmployeeName)
		if approve {
			s.AssignedEmployees = models.AddToSet(s.AssignedEmployees, action.EmployeeName)
		}
	})
	if err != nil {
		return nil, err
	}

	verdict := "Denied"
	if approve {
		verdict = "Approved"
	}
	w.audit.Record(fmt.Sprintf("%s %s", verdict, action.EmployeeName), manager, id)
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

// Drop pulls the employee out of all three membership sets in one call,
// covering cancel-while-pending and direct drop alike. Idempotent: an
// employee absent from every set still gets the unchanged shift back.
func (w *Workflow) Drop(ctx context.Context, id, employee string) (*models.Shift, error) {
	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.AssignedEmployees = models.Pull(s.AssignedEmployees, employee)
		s.PendingEmployees = models.Pull(s.PendingEmployees, employee)
		s.DropRequests = models.Pull(s.DropRequests, employee)
	})
	if err != nil {
		return nil, err
	}

	w.audit.Record("Cancelled Request/Dropped", employee, id)
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

// RequestDrop queues the employee for manager-reviewed removal; they stay
// assigned until the request is approved.
func (w *Workflow) RequestDrop(ctx context.Context, id, employee string) (*models.Shift, error) {
	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.DropRequests = models.AddToSet(s.DropRequests, employee)
	})
	if err != nil {
		return nil, err
	}

	w.audit.Record("Requested to Drop Shift", employee, id)
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

// ReviewDrop removes the employee from the drop queue unconditionally and
// on approve also unassigns them.
func (w *Workflow) ReviewDrop(ctx context.Context, id, manager string, action models.ApprovalAction) (*models.Shift, error) {
	approve := action.Action == ActionApprove
	updated, err := w.store.FindAndUpdate(ctx, id, func(s *models.Shift) {
		s.DropRequests = models.Pull(s.DropRequests, action.EmployeeName)
		if approve {
			s.AssignedEmployees = models.Pull(s.AssignedEmployees, action.EmployeeName)
		}
	})
	if err != nil {
		return nil, err
	}

	verdict := "Denied"
	if approve {
		verdict = "Approved"
	}
	w.audit.Record(fmt.Sprintf("%s Drop Request for %s", verdict, action.EmployeeName), manager, id)
	w.broadcast(Event{Action: EventUpdateShift, Shift: updated})
	return updated, nil
}

func (w *Workflow) broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal broadcast event: %v", err)
		return
	}
	w.hub.Broadcast(data)
}
