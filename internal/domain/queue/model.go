package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue entry statuses. waiting -> in-progress -> completed; cancelled is
// reachable from waiting or in-progress.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Entry maps to the queue_entries table. At most one entry per appointment
// is active (waiting or in-progress) at a time.
type Entry struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	AppointmentID        uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	Position             int        `db:"position" json:"position"`
	EstimatedWaitMinutes int        `db:"estimated_wait_minutes" json:"estimatedWaitTime"`
	Status               string     `db:"status" json:"status"`
	StartTime            *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime              *time.Time `db:"end_time" json:"end_time,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// View is the position payload returned to patients and broadcast to
// subscribers of the appointment's topic.
type View struct {
	Position          int    `json:"position"`
	EstimatedWaitTime int    `json:"estimatedWaitTime"`
	Status            string `json:"status"`
}

// View projects the entry into the broadcast payload.
func (e *Entry) View() View {
	return View{
		Position:          e.Position,
		EstimatedWaitTime: e.EstimatedWaitMinutes,
		Status:            e.Status,
	}
}

// CheckInInput starts a waiting entry for an appointment.
type CheckInInput struct {
	Position          int `json:"position"`
	EstimatedWaitTime int `json:"estimatedWaitTime"`
}

// UpdateInput is a partial queue update. Nil fields are unchanged.
type UpdateInput struct {
	Position          *int    `json:"position"`
	EstimatedWaitTime *int    `json:"estimatedWaitTime"`
	Status            *string `json:"status"`
}
