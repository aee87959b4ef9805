package history

import (
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type EntryResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	DoorID    string     `json:"door_id"`
	DoorCode  *string    `json:"door_code,omitempty"`
	RoomName  *string    `json:"room_name,omitempty"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time"`
	Status    string     `json:"status"`
}

// ScanRequest records a door entry or exit. Users may omit UserID. An empty
// Timestamp means now.
type ScanRequest struct {
	UserID    string `json:"user_id"`
	DoorID    string `json:"door_id"`
	Timestamp string `json:"timestamp,omitempty"`

	At time.Time `json:"-"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	} else if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}

	if validator.IsEmpty(r.DoorID) {
		errs.Add("door_id", "door_id is required")
	} else if !validator.IsValidUUID(r.DoorID) {
		errs.Add("door_id", "door_id must be a valid UUID")
	}

	if !validator.IsEmpty(r.Timestamp) {
		t, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			errs.Add("timestamp", "timestamp must be RFC3339, e.g. 2024-01-15T10:30:00Z")
		} else {
			r.At = t
		}
	}

	return errs.Err()
}

type HistoryFilter struct {
	UserID string  `json:"-"`
	DoorID *string `json:"door_id,omitempty"`
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != string(StatusActive) && *f.Status != string(StatusExited) {
		errs.Add("status", "status must be one of active, exited")
	}
	if f.DoorID != nil && !validator.IsValidUUID(*f.DoorID) {
		errs.Add("door_id", "door_id must be a valid UUID")
	}

	return errs.Err()
}

type ListHistoryResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Entries    []EntryResponse `json:"entries"`
}
