package store

import (
	"context"
	"errors"

	"github.com/shiftsync/shiftsync_backend/internal/models"
)

// ErrNotFound is returned when the referenced shift does not exist.
var ErrNotFound = errors.New("shift not found")

// DefaultListLimit caps FindAll when the caller passes limit <= 0.
const DefaultListLimit = 100

// ShiftStore is the document-store contract the workflow depends on.
//
// FindAndUpdate is the serialization point for all membership mutations:
// it applies mutate to the current document and persists the result as one
// atomic operation, so two concurrent mutations on the same shift never
// interleave their set updates. Implementations must not require callers
// to hold any lock across calls.
type ShiftStore interface {
	// GetByID returns the shift or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Shift, error)

	// FindAll returns up to limit shifts (DefaultListLimit when limit <= 0).
	FindAll(ctx context.Context, limit int) ([]*models.Shift, error)

	// FindWhere returns every shift matching the predicate.
	FindWhere(ctx context.Context, match func(*models.Shift) bool) ([]*models.Shift, error)

	// Insert stores a new shift document.
	Insert(ctx context.Context, shift *models.Shift) error

	// FindAndUpdate atomically applies mutate and returns the post-image,
	// or ErrNotFound if the shift does not exist.
	FindAndUpdate(ctx context.Context, id string, mutate func(*models.Shift)) (*models.Shift, error)

	// DeleteByID removes the shift, or returns ErrNotFound.
	DeleteByID(ctx context.Context, id string) error
}
