package history

import "time"

type Status string

const (
	StatusActive Status = "active"
	StatusExited Status = "exited"
)

// Entry is one door session. It is appended on entry and closed exactly
// once on exit; no other mutation is allowed.
type Entry struct {
	ID        string
	CompanyID string
	UserID    string
	DoorID    string
	EntryTime time.Time
	ExitTime  *time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	DoorCode *string
	RoomName *string
}

// Close returns the entry transitioned to Exited at exitTime.
func (e Entry) Close(exitTime time.Time) (Entry, error) {
	if e.Status != StatusActive {
		return Entry{}, ErrNoActiveEntry
	}
	if exitTime.Before(e.EntryTime) {
		return Entry{}, ErrExitBeforeEntry
	}
	e.ExitTime = &exitTime
	e.Status = StatusExited
	return e, nil
}

func (e Entry) ToResponse() EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		DoorID:    e.DoorID,
		DoorCode:  e.DoorCode,
		RoomName:  e.RoomName,
		EntryTime: e.EntryTime,
		ExitTime:  e.ExitTime,
		Status:    string(e.Status),
	}
}
