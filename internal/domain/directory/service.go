package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrValidation     = errors.New("validation failed")
)

const dateLayout = "2006-01-02"

// Service provides doctor search and availability management.
type Service struct {
	repo DoctorRepository
}

// NewService creates a new directory service.
func NewService(repo DoctorRepository) *Service {
	return &Service{repo: repo}
}

// Search returns doctors matching the filter. Name and specialty are
// case-insensitive substring matches; availableDate keeps only doctors with
// at least one unbooked slot on that calendar day.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]*Doctor, error) {
	if f.AvailableDate != "" {
		if _, err := time.Parse(dateLayout, f.AvailableDate); err != nil {
			return nil, fmt.Errorf("%w: availableDate must be YYYY-MM-DD", ErrValidation)
		}
	}
	return s.repo.Search(ctx, f)
}

// Profile returns a single doctor's profile.
func (s *Service) Profile(ctx context.Context, doctorID uuid.UUID) (*Doctor, error) {
	return s.repo.Profile(ctx, doctorID)
}

// Availability returns a doctor's slot-days, optionally filtered to one
// calendar date. Date comparison is by normalized date string, not datetime.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date string) ([]*AvailabilityDay, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
		}
	}
	if _, err := s.repo.Profile(ctx, doctorID); err != nil {
		return nil, err
	}

	days, err := s.repo.Availability(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if date == "" {
		return days, nil
	}

	filtered := make([]*AvailabilityDay, 0, 1)
	for _, d := range days {
		if d.Day == date {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// SetAvailability replaces a doctor's whole schedule. Existing bookings on a
// slot are forgotten from the directory view; the appointment ledger remains
// the source of truth for booked visits.
func (s *Service) SetAvailability(ctx context.Context, doctorID uuid.UUID, in AvailabilityInput) ([]*AvailabilityDay, error) {
	days := make([]*AvailabilityDay, 0, len(in.Days))
	seen := make(map[string]bool, len(in.Days))
	for _, d := range in.Days {
		if _, err := time.Parse(dateLayout, d.Day); err != nil {
			return nil, fmt.Errorf("%w: day %q must be YYYY-MM-DD", ErrValidation, d.Day)
		}
		if seen[d.Day] {
			return nil, fmt.Errorf("%w: duplicate day %s", ErrValidation, d.Day)
		}
		seen[d.Day] = true
		if len(d.Times) == 0 {
			return nil, fmt.Errorf("%w: day %s has no slots", ErrValidation, d.Day)
		}

		day := &AvailabilityDay{DoctorID: doctorID, Day: d.Day}
		seenTimes := make(map[string]bool, len(d.Times))
		for _, tm := range d.Times {
			if _, err := time.Parse("15:04", tm); err != nil {
				return nil, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, tm)
			}
			if seenTimes[tm] {
				return nil, fmt.Errorf("%w: duplicate time %s on %s", ErrValidation, tm, d.Day)
			}
			seenTimes[tm] = true
			day.Slots = append(day.Slots, Slot{Time: tm})
		}
		days = append(days, day)
	}

	if err := s.repo.ReplaceAvailability(ctx, doctorID, days); err != nil {
		return nil, err
	}
	return s.repo.Availability(ctx, doctorID)
}
