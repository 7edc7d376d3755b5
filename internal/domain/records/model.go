package records

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record types. The measurement types feed the stats series; diagnosis and
// treatment are narrative entries.
const (
	TypeDiagnosis     = "diagnosis"
	TypeTreatment     = "treatment"
	TypeWeight        = "weight"
	TypeBloodPressure = "blood_pressure"
	TypeHeartRate     = "heart_rate"
)

// Record statuses.
const (
	StatusActive   = "active"
	StatusResolved = "resolved"
	StatusOngoing  = "ongoing"
)

// Prescription statuses.
const (
	PrescriptionActive    = "active"
	PrescriptionCompleted = "completed"
	PrescriptionCancelled = "cancelled"
)

// HealthRecord is one entry in a patient's chart. Value is free-form JSON:
// a number for weight or heart rate, an object for blood pressure, text
// fields for diagnoses and treatments.
type HealthRecord struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	PatientID  uuid.UUID       `db:"patient_id" json:"patientId"`
	DoctorID   uuid.UUID       `db:"doctor_id" json:"doctorId"`
	RecordType string          `db:"record_type" json:"recordType"`
	Value      json.RawMessage `db:"value" json:"value"`
	Notes      string          `db:"notes" json:"notes"`
	Status     string          `db:"status" json:"status"`
	RecordedAt time.Time       `db:"recorded_at" json:"recordedAt"`
}

// Medication is one line of a prescription, stored as JSONB.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription groups the medications issued to a patient, optionally tied
// to the appointment they came out of.
type Prescription struct {
	ID                  uuid.UUID    `db:"id" json:"id"`
	PatientID           uuid.UUID    `db:"patient_id" json:"patientId"`
	DoctorID            uuid.UUID    `db:"doctor_id" json:"doctorId"`
	DoctorName          string       `db:"doctor_name" json:"doctorName"`
	AppointmentID       *uuid.UUID   `db:"appointment_id" json:"appointmentId,omitempty"`
	Medications         []Medication `db:"medications" json:"medications"`
	GeneralInstructions string       `db:"general_instructions" json:"generalInstructions"`
	Status              string       `db:"status" json:"status"`
	IssuedAt            time.Time    `db:"issued_at" json:"issuedAt"`
}

// CreateRecordInput is the payload for POST /api/health-records.
type CreateRecordInput struct {
	PatientID  string          `json:"patientId"`
	RecordType string          `json:"recordType"`
	Value      json.RawMessage `json:"value"`
	Notes      string          `json:"notes"`
	Status     string          `json:"status"`
}
