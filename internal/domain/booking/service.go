package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrSlotConflict   = errors.New("slot already booked")
	ErrQueueExhausted = errors.New("no free queue number for this day")
	ErrNotFound       = errors.New("appointment not found")
	ErrConflict       = errors.New("booking conflict, retry")
	ErrValidation     = errors.New("validation failed")

	// Lost a queue-number race: the service re-draws, callers never see it.
	errQueueNumberTaken = errors.New("queue number taken")
)

// DoctorDirectory resolves the booked doctor and the fee snapshot. Implemented
// by the directory domain via an adapter at wiring time.
type DoctorDirectory interface {
	Profile(ctx context.Context, doctorID uuid.UUID) (*DoctorSummary, error)
}

// createRetries bounds re-draws when a drawn queue number loses an insert
// race. Slot conflicts are never retried.
const createRetries = 5

// DefaultUpcomingLimit is how many upcoming appointments are listed when the
// caller does not ask for a specific count.
const DefaultUpcomingLimit = 5

// Service owns the appointment lifecycle: booking with queue-number
// assignment, patient updates, listings and payment transitions.
type Service struct {
	repo      AppointmentRepository
	directory DoctorDirectory
	allocator NumberAllocator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new booking service.
func NewService(repo AppointmentRepository, directory DoctorDirectory, allocator NumberAllocator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		allocator: allocator,
		logger:    logger,
		now:       time.Now,
	}
}

var validConsultTypes = map[string]bool{
	ConsultInPerson: true, ConsultVideo: true, ConsultPhone: true,
}

var validMethods = map[string]bool{
	MethodCash: true, MethodOnline: true,
}

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

// Create books an appointment. The queue number is drawn by the configured
// allocator and the insert is retried a bounded number of times when the
// number loses a concurrent race; the unique indexes are the authority, not
// a check-then-write.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, in CreateInput) (*Appointment, error) {
	doctorID, err := uuid.Parse(in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid doctorId", ErrValidation)
	}
	scheduledAt, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be RFC 3339", ErrValidation)
	}
	if !scheduledAt.After(s.now()) {
		return nil, fmt.Errorf("%w: date must be in the future", ErrValidation)
	}
	if in.ConsultationType == "" {
		in.ConsultationType = ConsultInPerson
	}
	if !validConsultTypes[in.ConsultationType] {
		return nil, fmt.Errorf("%w: unknown consultation type %q", ErrValidation, in.ConsultationType)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = MethodCash
	}
	if !validMethods[in.PaymentMethod] {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}

	doc, err := s.directory.Profile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := scheduledAt.UTC().Format("2006-01-02")
	for attempt := 0; attempt < createRetries; attempt++ {
		used, err := s.repo.UsedQueueNumbers(ctx, doctorID, day)
		if err != nil {
			return nil, err
		}
		number, err := s.allocator.Allocate(used)
		if err != nil {
			return nil, err
		}

		a := &Appointment{
			PatientID:        patientID,
			DoctorID:         doctorID,
			ScheduledAt:      scheduledAt,
			Symptoms:         in.Symptoms,
			Notes:            in.AdditionalNotes,
			Status:           StatusScheduled,
			ConsultationType: in.ConsultationType,
			PaymentStatus:    PaymentPending,
			PaymentMethod:    in.PaymentMethod,
			ConsultationFee:  doc.ConsultationFee,
			QueueNumber:      number,
		}

		err = s.repo.Create(ctx, a)
		if err == nil {
			a.Doctor = doc
			return a, nil
		}
		if errors.Is(err, errQueueNumberTaken) {
			s.logger.Debug().
				Str("doctor_id", doctorID.String()).
				Str("day", day).
				Int("queue_number", number).
				Msg("queue number race, redrawing")
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

// Update merges the provided fields into an appointment owned by patientID.
// Absent fields are unchanged. An appointment that does not exist or belongs
// to someone else is reported as not found.
func (s *Service) Update(ctx context.Context, id, patientID uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.repo.GetOwned(ctx, id, patientID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !validStatuses[*in.Status] {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		if a.Status == StatusCancelled && *in.Status != StatusCancelled {
			return nil, fmt.Errorf("%w: cancelled appointments cannot be reopened", ErrValidation)
		}
		a.Status = *in.Status
	}
	if in.Symptoms != nil {
		a.Symptoms = *in.Symptoms
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns an appointment owned by patientID. An appointment that does
// not exist or belongs to someone else is reported as not found.
func (s *Service) Get(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	return s.repo.GetOwned(ctx, id, patientID)
}

// ListByPatient returns the patient's appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListUpcoming returns scheduled future appointments, soonest first.
func (s *Service) ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	return s.repo.ListUpcoming(ctx, patientID, limit)
}

// MarkPaid finalizes an online payment. It is idempotent and swallows an
// absent id with a log line: it runs from an asynchronous webhook with no
// caller to report to.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) error {
	updated, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	if !updated {
		s.logger.Warn().
			Str("appointment_id", id.String()).
			Msg("mark paid for unknown appointment, ignoring")
	}
	return nil
}

// ConfirmCashPayment settles an appointment in cash. Repeating the call on an
// already-paid appointment is a no-op.
func (s *Service) ConfirmCashPayment(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetOwned(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if a.PaymentStatus == PaymentPaid {
		return a, nil
	}
	if err := s.repo.SetPayment(ctx, id, PaymentPaid, MethodCash); err != nil {
		return nil, err
	}
	a.PaymentStatus = PaymentPaid
	a.PaymentMethod = MethodCash
	return a, nil
}

// Owner reports the patient on an appointment. Used by the queue tracker for
// ownership checks.
func (s *Service) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return s.repo.Owner(ctx, id)
}
