package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Payment methods.
const (
	MethodCash   = "cash"
	MethodOnline = "online"
)

// Consultation types.
const (
	ConsultInPerson = "in-person"
	ConsultVideo    = "video"
	ConsultPhone    = "phone"
)

// Appointment maps to the appointments table. The consultation fee is a
// snapshot of the doctor's fee at booking time, not a live reference.
type Appointment struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	PatientID        uuid.UUID      `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID      `db:"doctor_id" json:"doctor_id"`
	ScheduledAt      time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Symptoms         string         `db:"symptoms" json:"symptoms"`
	Notes            string         `db:"notes" json:"notes"`
	Status           string         `db:"status" json:"status"`
	ConsultationType string         `db:"consultation_type" json:"consultation_type"`
	PaymentStatus    string         `db:"payment_status" json:"payment_status"`
	PaymentMethod    string         `db:"payment_method" json:"payment_method"`
	ConsultationFee  float64        `db:"consultation_fee" json:"consultation_fee"`
	QueueNumber      int            `db:"queue_number" json:"queue_number"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
	Doctor           *DoctorSummary `db:"-" json:"doctor,omitempty"`
}

// DoctorSummary is the directory snapshot attached to appointment responses.
type DoctorSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Specialty       string    `json:"specialty"`
	ConsultationFee float64   `json:"consultation_fee"`
}

// CreateInput is the booking request payload. Date is RFC 3339.
type CreateInput struct {
	DoctorID         string `json:"doctorId"`
	Date             string `json:"date"`
	Symptoms         string `json:"symptoms"`
	AdditionalNotes  string `json:"additionalDetails"`
	ConsultationType string `json:"consultationType"`
	PaymentMethod    string `json:"paymentMethod"`
}

// UpdateInput is a partial appointment update. Nil fields are unchanged.
type UpdateInput struct {
	Status   *string `json:"status"`
	Symptoms *string `json:"symptoms"`
	Notes    *string `json:"notes"`
}

// Day returns the UTC calendar day the appointment falls on, scoping queue
// numbers the same way the scheduled_on column does.
func (a *Appointment) Day() string {
	return a.ScheduledAt.UTC().Format("2006-01-02")
}
