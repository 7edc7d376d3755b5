package directory

import (
	"github.com/google/uuid"
)

// Doctor is a user with the doctor role joined with its profile.
type Doctor struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Specialty       string    `json:"specialty"`
	Qualifications  []string  `json:"qualifications"`
	ExperienceYears int       `json:"experience_years"`
	ConsultationFee float64   `json:"consultation_fee"`
	Rating          float64   `json:"rating"`
	TotalRatings    int       `json:"total_ratings"`
}

// AvailabilityDay is one calendar day a doctor offers slots on.
type AvailabilityDay struct {
	ID       uuid.UUID `json:"id"`
	DoctorID uuid.UUID `json:"doctor_id"`
	Day      string    `json:"day"` // YYYY-MM-DD
	Slots    []Slot    `json:"slots"`
}

// Slot is a single bookable time within an availability day.
type Slot struct {
	Time     string `json:"time"` // e.g. "10:00"
	IsBooked bool   `json:"is_booked"`
}

// SearchFilter narrows a doctor search. Zero values mean "any".
type SearchFilter struct {
	Name          string
	Specialty     string
	AvailableDate string // YYYY-MM-DD; requires >=1 unbooked slot that day
}

// AvailabilityInput is the payload for doctor-side schedule management.
type AvailabilityInput struct {
	Days []AvailabilityDayInput `json:"days"`
}

// AvailabilityDayInput is one day in an availability update.
type AvailabilityDayInput struct {
	Day   string   `json:"day"`
	Times []string `json:"times"`
}
