package auth

import (
	"errors"

	"github.com/google/uuid"
)

// Roles known to the service. Staff covers non-doctor clinic personnel who
// manage the live queue.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleStaff   = "staff"
)

// ErrForbidden is returned when an actor lacks the capability for an action.
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated principal performing an action.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Authorizer is the single capability-check surface for role-gated actions.
// Handlers and services consult it instead of scattering role comparisons.
type Authorizer interface {
	Authorize(actor Actor, action string, resource string) error
}

// Actions gated through the Authorizer.
const (
	ActionQueueUpdate        = "queue:update"
	ActionQueueCheckIn       = "queue:check-in"
	ActionRecordCreate       = "records:create"
	ActionAvailabilityManage = "availability:manage"
)

// RoleAuthorizer authorizes actions from a static action→roles table.
type RoleAuthorizer struct {
	allowed map[string][]string
}

// NewRoleAuthorizer builds the default capability table.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{
		allowed: map[string][]string{
			ActionQueueUpdate:        {RoleDoctor, RoleStaff},
			ActionQueueCheckIn:       {RoleDoctor, RoleStaff},
			ActionRecordCreate:       {RoleDoctor},
			ActionAvailabilityManage: {RoleDoctor},
		},
	}
}

func (a *RoleAuthorizer) Authorize(actor Actor, action string, resource string) error {
	for _, role := range a.allowed[action] {
		if actor.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
