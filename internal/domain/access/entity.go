package access

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// CanTransitionTo reports whether s -> next is a legal workflow step.
// The only legal steps are pending -> approved and pending -> rejected.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestStatusPending && next.IsTerminal()
}

// PermissionRequest asks for a user to be granted access to one door.
type PermissionRequest struct {
	ID              string
	CompanyID       string
	UserID          string
	DoorID          string
	Status          RequestStatus
	Reason          *string
	DecidedBy       *string
	DecidedAt       *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	UserName *string
	DoorCode *string
	RoomName *string
}

// AccessEntry is one row of the access ledger: the user is authorized for the door.
// InTime and OutTime track the most recent scan session.
type AccessEntry struct {
	ID        string
	CompanyID string
	UserID    string
	DoorID    string
	RequestID *string
	InTime    *time.Time
	OutTime   *time.Time
	Date      time.Time
	CreatedAt time.Time

	// Join
	DoorCode *string
	RoomName *string
}

// Decision is the outcome of a door scan authorization check.
type Decision struct {
	Granted   bool
	Reason    string
	UserID    string
	DoorID    string
	CheckedAt time.Time
}

const (
	DecisionGranted      = "granted"
	DecisionNoAccess     = "no_access"
	DecisionDoorInactive = "door_inactive"
)
