package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
	"github.com/patientpanel/patientpanel/pkg/pagination"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// statsSeriesLimit caps how many points a measurement series returns. The
// charts on the patient dashboard only plot recent history.
const statsSeriesLimit = 50

var recordTypes = map[string]bool{
	TypeDiagnosis:     true,
	TypeTreatment:     true,
	TypeWeight:        true,
	TypeBloodPressure: true,
	TypeHeartRate:     true,
}

var statsTypes = map[string]bool{
	TypeWeight:        true,
	TypeBloodPressure: true,
	TypeHeartRate:     true,
}

var recordStatuses = map[string]bool{
	StatusActive:   true,
	StatusResolved: true,
	StatusOngoing:  true,
}

var prescriptionStatuses = map[string]bool{
	PrescriptionActive:    true,
	PrescriptionCompleted: true,
	PrescriptionCancelled: true,
}

// Service covers the patient chart: health records, measurement series and
// the prescriptions ledger.
type Service struct {
	records       RecordRepository
	prescriptions PrescriptionRepository
	authorizer    auth.Authorizer
	logger        zerolog.Logger
}

// NewService creates a new records service.
func NewService(records RecordRepository, prescriptions PrescriptionRepository, authorizer auth.Authorizer, logger zerolog.Logger) *Service {
	return &Service{
		records:       records,
		prescriptions: prescriptions,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// List returns the patient's full chart, newest entry first.
func (s *Service) List(ctx context.Context, patientID uuid.UUID) ([]*HealthRecord, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// Stats returns one measurement series in chronological order, capped for
// charting. Only measurement types have a series.
func (s *Service) Stats(ctx context.Context, patientID uuid.UUID, recordType string) ([]*HealthRecord, error) {
	if !statsTypes[recordType] {
		return nil, fmt.Errorf("%w: unknown stats type %q", ErrValidation, recordType)
	}
	return s.records.ListSeries(ctx, patientID, recordType, statsSeriesLimit)
}

// Create adds a chart entry for a patient. Doctors only; the entry is
// attributed to the acting doctor.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateRecordInput) (*HealthRecord, error) {
	if err := s.authorizer.Authorize(actor, auth.ActionRecordCreate, in.PatientID); err != nil {
		return nil, ErrForbidden
	}
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid patient id", ErrValidation)
	}
	if !recordTypes[in.RecordType] {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrValidation, in.RecordType)
	}
	if len(in.Value) == 0 || !json.Valid(in.Value) {
		return nil, fmt.Errorf("%w: value must be valid JSON", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if !recordStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	rec := &HealthRecord{
		PatientID:  patientID,
		DoctorID:   actor.ID,
		RecordType: in.RecordType,
		Value:      in.Value,
		Notes:      in.Notes,
		Status:     status,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("record_id", rec.ID.String()).
		Str("patient_id", patientID.String()).
		Str("record_type", rec.RecordType).
		Msg("health record created")
	return rec, nil
}

// Prescriptions returns a page of the patient's prescriptions, newest first.
func (s *Service) Prescriptions(ctx context.Context, patientID uuid.UUID, status string, p pagination.Params) (*pagination.Response, error) {
	if status != "" && !prescriptionStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	items, total, err := s.prescriptions.ListByPatient(ctx, patientID, status, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Prescription{}
	}
	return pagination.NewResponse(items, total, p.Limit, p.Offset), nil
}

// PrescriptionPDF renders a prescription as a printable PDF. Only the
// patient it was issued to or the prescribing doctor may download it.
func (s *Service) PrescriptionPDF(ctx context.Context, requesterID, prescriptionID uuid.UUID) ([]byte, error) {
	p, err := s.prescriptions.Get(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if p.PatientID != requesterID && p.DoctorID != requesterID {
		return nil, ErrForbidden
	}
	return renderPrescriptionPDF(p)
}
