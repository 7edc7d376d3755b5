package queue

import (
	"context"

	"github.com/google/uuid"
)

// EntryRepository defines the data access interface for queue entries.
//
// Create relies on the partial unique index over active entries: it returns
// ErrAlreadyCheckedIn when the appointment already has a waiting or
// in-progress entry.
type EntryRepository interface {
	GetActive(ctx context.Context, appointmentID uuid.UUID) (*Entry, error)
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
}
