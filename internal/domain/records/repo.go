package records

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository persists health records.
type RecordRepository interface {
	// Create stores a new record, assigning its id and recorded-at.
	Create(ctx context.Context, rec *HealthRecord) error
	// ListByPatient returns the patient's records, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*HealthRecord, error)
	// ListSeries returns the patient's records of one measurement type in
	// chronological order, capped at limit.
	ListSeries(ctx context.Context, patientID uuid.UUID, recordType string, limit int) ([]*HealthRecord, error)
}

// PrescriptionRepository reads the prescriptions ledger.
type PrescriptionRepository interface {
	// Get returns a prescription by id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// ListByPatient returns a page of the patient's prescriptions, newest
	// first, optionally filtered by status, plus the total row count.
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error)
	// Create stores a new prescription.
	Create(ctx context.Context, p *Prescription) error
}
