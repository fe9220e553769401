package shift

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/store"
)

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) Record(action, user, shiftID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *recordingAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.actions)
}

type recordingHub struct {
	mu       sync.Mutex
	messages [][]byte
}

func (h *recordingHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *recordingHub) events(t *testing.T) []Event {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, 0, len(h.messages))
	for _, msg := range h.messages {
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("unmarshal broadcast message: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func newTestWorkflow() (*Workflow, *store.MemoryStore, *recordingAudit, *recordingHub) {
	s := store.NewMemoryStore()
	audit := &recordingAudit{}
	hub := &recordingHub{}
	return NewWorkflow(s, audit, hub), s, audit, hub
}

func mustCreate(t *testing.T, w *Workflow, title string, start, end time.Time) *models.Shift {
	t.Helper()
	created, err := w.Create(context.Background(), models.ShiftCreate{
		Title:     title,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		t.Fatalf("create shift %q: %v", title, err)
	}
	return created
}

func assign(t *testing.T, w *Workflow, id, employee string) {
	t.Helper()
	if _, err := w.RequestClaim(context.Background(), id, employee); err != nil {
		t.Fatalf("request claim: %v", err)
	}
	if _, err := w.ReviewClaim(context.Background(), id, "boss", models.ApprovalAction{
		EmployeeName: employee,
		Action:       ActionApprove,
	}); err != nil {
		t.Fatalf("approve claim: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	w, _, _, hub := newTestWorkflow()
	ctx := context.Background()
	start := time.Date(2026, 2, 21, 8, 0, 0, 0, time.UTC)

	if _, err := w.Create(ctx, models.ShiftCreate{Title: "ab", StartTime: start, EndTime: start.Add(time.Hour)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("short title: got %v, want ErrValidation", err)
	}
	if _, err := w.Create(ctx, models.ShiftCreate{Title: "Backwards", StartTime: start, EndTime: start.Add(-time.Hour)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("start after end: got %v, want ErrValidation", err)
	}
	if _, err := w.Create(ctx, models.ShiftCreate{Title: "Zero length", StartTime: start, EndTime: start}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero-length interval: got %v, want ErrValidation", err)
	}
	if len(hub.events(t)) != 0 {
		t.Fatal("failed creates must not broadcast")
	}

	created := mustCreate(t, w, "Morning", start, start.Add(4*time.Hour))
	if created.ID == "" {
		t.Fatal("created shift must get an id")
	}
	if created.AssignedEmployees == nil || created.PendingEmployees == nil || created.DropRequests == nil {
		t.Fatal("membership sets must be initialized empty, not nil")
	}

	events := hub.events(t)
	if len(events) != 1 || events[0].Action != EventNewShift {
		t.Fatalf("expected one NEW_SHIFT event, got %+v", events)
	}
}

func TestRequestClaimOverlapConflict(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	a := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	b := mustCreate(t, w, "Late Morning", day.Add(10*time.Hour), day.Add(14*time.Hour))
	assign(t, w, a.ID, "eve")

	if _, err := w.RequestClaim(ctx, b.ID, "eve"); !errors.Is(err, ErrConflict) {
		t.Fatalf("overlapping claim: got %v, want ErrConflict", err)
	}

	// A claim that was never approved does not block anything.
	if _, err := w.RequestClaim(ctx, b.ID, "mallory"); err != nil {
		t.Fatalf("claim on free schedule: %v", err)
	}
}

func TestRequestClaimExactBoundaryIsNoConflict(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	a := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	b := mustCreate(t, w, "Afternoon", day.Add(12*time.Hour), day.Add(16*time.Hour))
	assign(t, w, a.ID, "eve")

	updated, err := w.RequestClaim(ctx, b.ID, "eve")
	if err != nil {
		t.Fatalf("back-to-back shifts must not conflict: %v", err)
	}
	if len(updated.PendingEmployees) != 1 || updated.PendingEmployees[0] != "eve" {
		t.Fatalf("unexpected pending set: %v", updated.PendingEmployees)
	}
}

func TestRequestClaimNotFound(t *testing.T) {
	w, _, audit, hub := newTestWorkflow()
	if _, err := w.RequestClaim(context.Background(), "missing", "eve"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if audit.count() != 0 || len(hub.events(t)) != 0 {
		t.Fatal("failed claim must not audit or broadcast")
	}
}

func TestReviewClaimApproveAndDeny(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	if _, err := w.RequestClaim(ctx, s.ID, "bob"); err != nil {
		t.Fatalf("request claim: %v", err)
	}

	approved, err := w.ReviewClaim(ctx, s.ID, "boss", models.ApprovalAction{EmployeeName: "bob", Action: ActionApprove})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(approved.AssignedEmployees) != 1 || approved.AssignedEmployees[0] != "bob" {
		t.Fatalf("unexpected assigned set: %v", approved.AssignedEmployees)
	}
	if len(approved.PendingEmployees) != 0 {
		t.Fatalf("pending must be emptied on approve, got %v", approved.PendingEmployees)
	}

	// A second review for the same employee is a no-op on pending and must
	// not duplicate the assignment.
	again, err := w.ReviewClaim(ctx, s.ID, "boss", models.ApprovalAction{EmployeeName: "bob", Action: ActionApprove})
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if len(again.AssignedEmployees) != 1 {
		t.Fatalf("assigned set must stay a set: %v", again.AssignedEmployees)
	}

	if _, err := w.RequestClaim(ctx, s.ID, "carol"); err != nil {
		t.Fatalf("request claim: %v", err)
	}
	denied, err := w.ReviewClaim(ctx, s.ID, "boss", models.ApprovalAction{EmployeeName: "carol", Action: ActionDeny})
	if err != nil {
		t.Fatalf("deny: %v", err)
	}
	if len(denied.PendingEmployees) != 0 {
		t.Fatalf("deny must still pull from pending, got %v", denied.PendingEmployees)
	}
	if len(denied.AssignedEmployees) != 1 {
		t.Fatalf("deny must not assign, got %v", denied.AssignedEmployees)
	}
}

func TestDropIsIdempotent(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	assign(t, w, s.ID, "bob")

	first, err := w.Drop(ctx, s.ID, "bob")
	if err != nil {
		t.Fatalf("first drop: %v", err)
	}
	if len(first.AssignedEmployees) != 0 {
		t.Fatalf("drop must unassign, got %v", first.AssignedEmployees)
	}

	second, err := w.Drop(ctx, s.ID, "bob")
	if err != nil {
		t.Fatalf("second drop must succeed: %v", err)
	}
	if len(second.AssignedEmployees) != 0 || len(second.PendingEmployees) != 0 || len(second.DropRequests) != 0 {
		t.Fatalf("second drop must return the unchanged shift, got %+v", second)
	}
}

func TestDropClearsAllThreeSets(t *testing.T) {
	w, s, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	created := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	if _, err := s.FindAndUpdate(ctx, created.ID, func(sh *models.Shift) {
		sh.AssignedEmployees = models.AddToSet(sh.AssignedEmployees, "bob")
		sh.PendingEmployees = models.AddToSet(sh.PendingEmployees, "bob")
		sh.DropRequests = models.AddToSet(sh.DropRequests, "bob")
	}); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	dropped, err := w.Drop(ctx, created.ID, "bob")
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if len(dropped.AssignedEmployees)+len(dropped.PendingEmployees)+len(dropped.DropRequests) != 0 {
		t.Fatalf("drop must clear every set, got %+v", dropped)
	}
}

func TestRequestDropAndReviewDrop(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Night Watch", day.Add(22*time.Hour), day.Add(30*time.Hour))
	assign(t, w, s.ID, "bob")

	queued, err := w.RequestDrop(ctx, s.ID, "bob")
	if err != nil {
		t.Fatalf("request drop: %v", err)
	}
	if len(queued.DropRequests) != 1 || queued.DropRequests[0] != "bob" {
		t.Fatalf("unexpected drop queue: %v", queued.DropRequests)
	}
	if len(queued.AssignedEmployees) != 1 {
		t.Fatal("request-drop must not unassign yet")
	}

	denied, err := w.ReviewDrop(ctx, s.ID, "boss", models.ApprovalAction{EmployeeName: "bob", Action: ActionDeny})
	if err != nil {
		t.Fatalf("deny drop: %v", err)
	}
	if len(denied.DropRequests) != 0 {
		t.Fatalf("deny must still clear the drop queue, got %v", denied.DropRequests)
	}
	if len(denied.AssignedEmployees) != 1 {
		t.Fatal("denied drop must keep the assignment")
	}

	if _, err := w.RequestDrop(ctx, s.ID, "bob"); err != nil {
		t.Fatalf("second request drop: %v", err)
	}
	approved, err := w.ReviewDrop(ctx, s.ID, "boss", models.ApprovalAction{EmployeeName: "bob", Action: ActionApprove})
	if err != nil {
		t.Fatalf("approve drop: %v", err)
	}
	if len(approved.DropRequests) != 0 || len(approved.AssignedEmployees) != 0 {
		t.Fatalf("approved drop must unassign, got %+v", approved)
	}
}

func TestDeleteNonexistentEmitsNothing(t *testing.T) {
	w, _, audit, hub := newTestWorkflow()

	err := w.Delete(context.Background(), "missing", "boss")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if len(hub.events(t)) != 0 {
		t.Fatal("failed delete must not broadcast")
	}
	if audit.count() != 0 {
		t.Fatal("failed delete must not audit")
	}
}

func TestDeleteBroadcastsShiftID(t *testing.T) {
	w, _, audit, hub := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	if err := w.Delete(ctx, s.ID, "boss"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events := hub.events(t)
	last := events[len(events)-1]
	if last.Action != EventDeleteShift || last.ShiftID != s.ID {
		t.Fatalf("unexpected delete event: %+v", last)
	}
	if last.Shift != nil {
		t.Fatal("delete event carries only the shift id")
	}
	if audit.count() != 1 {
		t.Fatalf("delete must audit once, got %d entries", audit.count())
	}

	if _, err := w.RequestClaim(ctx, s.ID, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("claim on deleted shift: got %v, want ErrNotFound", err)
	}
}

func TestUpdateKeepsMembership(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	assign(t, w, s.ID, "bob")

	updated, err := w.Update(ctx, s.ID, models.ShiftUpdate{
		Title:     "Early Morning",
		StartTime: day.Add(6 * time.Hour),
		EndTime:   day.Add(10 * time.Hour),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Early Morning" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
	if len(updated.AssignedEmployees) != 1 || updated.AssignedEmployees[0] != "bob" {
		t.Fatalf("update must not touch membership, got %v", updated.AssignedEmployees)
	}

	if _, err := w.Update(ctx, "missing", models.ShiftUpdate{Title: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing shift: got %v, want ErrNotFound", err)
	}
}

func TestConcurrentClaimsOnDisjointShifts(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	a := mustCreate(t, w, "Morning", day.Add(8*time.Hour), day.Add(12*time.Hour))
	b := mustCreate(t, w, "Evening", day.Add(18*time.Hour), day.Add(22*time.Hour))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = w.RequestClaim(ctx, a.ID, "bob")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = w.RequestClaim(ctx, b.ID, "carol")
	}()
	wg.Wait()

	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("concurrent claims on disjoint shifts must both succeed: %v, %v", errs[0], errs[1])
	}

	afterA, _ := w.store.GetByID(ctx, a.ID)
	afterB, _ := w.store.GetByID(ctx, b.ID)
	if len(afterA.PendingEmployees) != 1 || len(afterB.PendingEmployees) != 1 {
		t.Fatalf("pending sets corrupted: %v / %v", afterA.PendingEmployees, afterB.PendingEmployees)
	}
}

func TestConcurrentClaimsOnSameShiftDoNotInterleave(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	day := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	s := mustCreate(t, w, "Popular Shift", day.Add(8*time.Hour), day.Add(12*time.Hour))

	employees := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	var wg sync.WaitGroup
	for _, employee := range employees {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := w.RequestClaim(ctx, s.ID, name); err != nil {
				t.Errorf("claim by %s: %v", name, err)
			}
		}(employee)
	}
	wg.Wait()

	after, err := w.store.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get shift: %v", err)
	}
	if len(after.PendingEmployees) != len(employees) {
		t.Fatalf("expected %d pending employees, got %v", len(employees), after.PendingEmployees)
	}
}
