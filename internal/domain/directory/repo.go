package directory

import (
	"context"

	"github.com/google/uuid"
)

// DoctorRepository defines the data access interface for the directory.
type DoctorRepository interface {
	Search(ctx context.Context, f SearchFilter) ([]*Doctor, error)
	Profile(ctx context.Context, doctorID uuid.UUID) (*Doctor, error)
	Availability(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityDay, error)
	ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, days []*AvailabilityDay) error
}
