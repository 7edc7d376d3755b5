package booking

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository defines the data access interface for appointments.
//
// Create relies on the database's partial unique indexes for slot
// exclusivity and queue-number uniqueness: it returns ErrSlotConflict when
// the (doctor, datetime) slot is taken and errQueueNumberTaken when the
// drawn number lost a race, so the service can re-draw.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetOwned(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error)
	UsedQueueNumbers(ctx context.Context, doctorID uuid.UUID, day string) (map[int]bool, error)
	// MarkPaid sets payment_status=paid, payment_method=online. It reports
	// whether a row matched; an absent id is not an error.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	SetPayment(ctx context.Context, id uuid.UUID, status, method string) error
	// Owner returns the patient on the appointment, or ErrNotFound.
	Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}
