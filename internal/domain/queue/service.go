package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
	"github.com/patientpanel/patientpanel/internal/platform/ws"
)

var (
	ErrNotFound         = errors.New("no active queue entry")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCheckedIn = errors.New("appointment already checked in")
	ErrValidation       = errors.New("validation failed")
)

// AppointmentOwnership resolves the owning patient of an appointment.
// Implemented by the booking domain via an adapter at wiring time; an absent
// appointment surfaces as ErrNotFound.
type AppointmentOwnership interface {
	Owner(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error)
}

// Service tracks live queue positions and broadcasts every accepted change
// to the appointment's topic.
type Service struct {
	repo         EntryRepository
	appointments AppointmentOwnership
	authorizer   auth.Authorizer
	publisher    ws.EventPublisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewService creates a new queue service.
func NewService(repo EntryRepository, appointments AppointmentOwnership, authorizer auth.Authorizer, publisher ws.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		authorizer:   authorizer,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Position returns the live view of an appointment's queue entry. Only the
// patient on the appointment may ask.
func (s *Service) Position(ctx context.Context, appointmentID, requesterID uuid.UUID) (View, error) {
	owner, err := s.appointments.Owner(ctx, appointmentID)
	if err != nil {
		return View{}, err
	}
	if owner != requesterID {
		return View{}, ErrForbidden
	}
	e, err := s.repo.GetActive(ctx, appointmentID)
	if err != nil {
		return View{}, err
	}
	return e.View(), nil
}

// CheckIn opens a waiting entry for the appointment. Staff only. The partial
// unique index rejects a second active entry.
func (s *Service) CheckIn(ctx context.Context, appointmentID uuid.UUID, actor auth.Actor, in CheckInInput) (*Entry, error) {
	if err := s.authorizer.Authorize(actor, auth.ActionQueueCheckIn, appointmentID.String()); err != nil {
		return nil, ErrForbidden
	}
	if in.Position < 1 {
		return nil, fmt.Errorf("%w: position must be positive", ErrValidation)
	}
	if in.EstimatedWaitTime < 0 {
		return nil, fmt.Errorf("%w: estimatedWaitTime must be non-negative", ErrValidation)
	}
	if _, err := s.appointments.Owner(ctx, appointmentID); err != nil {
		return nil, err
	}

	e := &Entry{
		AppointmentID:        appointmentID,
		Position:             in.Position,
		EstimatedWaitMinutes: in.EstimatedWaitTime,
		Status:               StatusWaiting,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.publish(ctx, appointmentID, e.View())
	return e, nil
}

// Update merges the provided fields into the active entry, validates the
// status machine and broadcasts the accepted state. Staff only.
func (s *Service) Update(ctx context.Context, appointmentID uuid.UUID, actor auth.Actor, in UpdateInput) (*Entry, error) {
	if err := s.authorizer.Authorize(actor, auth.ActionQueueUpdate, appointmentID.String()); err != nil {
		return nil, ErrForbidden
	}

	e, err := s.repo.GetActive(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != e.Status {
		if !canTransition(e.Status, *in.Status) {
			return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrValidation, e.Status, *in.Status)
		}
		now := s.now()
		switch *in.Status {
		case StatusInProgress:
			e.StartTime = &now
		case StatusCompleted, StatusCancelled:
			e.EndTime = &now
		}
		e.Status = *in.Status
	}
	if in.Position != nil {
		if *in.Position < 1 {
			return nil, fmt.Errorf("%w: position must be positive", ErrValidation)
		}
		e.Position = *in.Position
	}
	if in.EstimatedWaitTime != nil {
		if *in.EstimatedWaitTime < 0 {
			return nil, fmt.Errorf("%w: estimatedWaitTime must be non-negative", ErrValidation)
		}
		e.EstimatedWaitMinutes = *in.EstimatedWaitTime
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.publish(ctx, appointmentID, e.View())
	return e, nil
}

// canTransition encodes waiting -> in-progress -> completed, with cancelled
// reachable from either active state.
func canTransition(from, to string) bool {
	switch from {
	case StatusWaiting:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// publish is fire-and-forget: a topic with no subscribers is a no-op and a
// marshalling failure is only logged.
func (s *Service) publish(ctx context.Context, appointmentID uuid.UUID, v View) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal queue update")
		return
	}
	event := ws.Event{
		Type:      "queue-update",
		Topic:     ws.QueueTopic(appointmentID),
		Timestamp: s.now().UTC(),
		Data:      data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", appointmentID.String()).
			Msg("broadcast queue update")
	}
}
