package access

import (
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type PermissionRequestResponse struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	UserID          string     `json:"user_id"`
	UserName        *string    `json:"user_name,omitempty"`
	DoorID          string     `json:"door_id"`
	DoorCode        *string    `json:"door_code,omitempty"`
	RoomName        *string    `json:"room_name,omitempty"`
	Status          string     `json:"status"`
	Reason          *string    `json:"reason,omitempty"`
	DecidedBy       *string    `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r PermissionRequest) ToResponse() PermissionRequestResponse {
	return PermissionRequestResponse{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		UserID:          r.UserID,
		UserName:        r.UserName,
		DoorID:          r.DoorID,
		DoorCode:        r.DoorCode,
		RoomName:        r.RoomName,
		Status:          string(r.Status),
		Reason:          r.Reason,
		DecidedBy:       r.DecidedBy,
		DecidedAt:       r.DecidedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type AccessEntryResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	DoorID    string     `json:"door_id"`
	DoorCode  *string    `json:"door_code,omitempty"`
	RoomName  *string    `json:"room_name,omitempty"`
	RequestID *string    `json:"request_id,omitempty"`
	InTime    *time.Time `json:"in_time"`
	OutTime   *time.Time `json:"out_time"`
	Date      time.Time  `json:"date"`
}

func (e AccessEntry) ToResponse() AccessEntryResponse {
	return AccessEntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		DoorID:    e.DoorID,
		DoorCode:  e.DoorCode,
		RoomName:  e.RoomName,
		RequestID: e.RequestID,
		InTime:    e.InTime,
		OutTime:   e.OutTime,
		Date:      e.Date,
	}
}

type DecisionResponse struct {
	Granted   bool      `json:"granted"`
	Reason    string    `json:"reason"`
	UserID    string    `json:"user_id"`
	DoorID    string    `json:"door_id"`
	CheckedAt time.Time `json:"checked_at"`
}

func (d Decision) ToResponse() DecisionResponse {
	return DecisionResponse{
		Granted:   d.Granted,
		Reason:    d.Reason,
		UserID:    d.UserID,
		DoorID:    d.DoorID,
		CheckedAt: d.CheckedAt,
	}
}

// CreatePermissionRequestRequest submits a request. Users may omit UserID;
// it is then taken from the caller.
type CreatePermissionRequestRequest struct {
	UserID string  `json:"user_id"`
	DoorID string  `json:"door_id"`
	Reason *string `json:"reason,omitempty"`
}

func (r *CreatePermissionRequestRequest) Validate() error {
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

	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type RejectRequestRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (r *RejectRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

// RequestFilter narrows request listings. CompanyID is set from the caller's scope.
type RequestFilter struct {
	CompanyID *string `json:"-"`
	UserID    *string `json:"user_id,omitempty"`
	DoorID    *string `json:"door_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !RequestStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	if f.UserID != nil && !validator.IsValidUUID(*f.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if f.DoorID != nil && !validator.IsValidUUID(*f.DoorID) {
		errs.Add("door_id", "door_id must be a valid UUID")
	}

	return errs.Err()
}

type ListRequestResponse struct {
	TotalCount int64                       `json:"total_count"`
	Page       int                         `json:"page"`
	Limit      int                         `json:"limit"`
	TotalPages int                         `json:"total_pages"`
	Requests   []PermissionRequestResponse `json:"requests"`
}
