package door

import (
	"strings"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type DoorResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	DoorCode   string    `json:"door_code"`
	RoomName   string    `json:"room_name"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
	QRData     *string   `json:"qr_data,omitempty"`
	QRImageURL *string   `json:"qr_image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateDoorRequest registers a door. QRImage is an optional base64 PNG,
// either raw or as a data URL.
type CreateDoorRequest struct {
	DoorCode string  `json:"door_code"`
	RoomName string  `json:"room_name"`
	Location *string `json:"location,omitempty"`
	QRData   string  `json:"qr_data"`
	QRImage  *string `json:"qr_image,omitempty"`
}

func (r *CreateDoorRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DoorCode) {
		errs.Add("door_code", "door_code is required")
	} else if !validator.IsValidDoorCode(r.DoorCode) {
		errs.Add("door_code", "door_code must be 2-32 characters of letters, numbers, underscores or hyphens")
	}

	if validator.IsEmpty(r.RoomName) {
		errs.Add("room_name", "room_name is required")
	} else if len(r.RoomName) > 255 {
		errs.Add("room_name", "room_name must not exceed 255 characters")
	}

	if r.Location != nil && len(*r.Location) > 255 {
		errs.Add("location", "location must not exceed 255 characters")
	}

	if validator.IsEmpty(r.QRData) {
		errs.Add("qr_data", "qr_data is required")
	}

	if r.QRImage != nil && !validator.IsEmpty(*r.QRImage) {
		raw := *r.QRImage
		if strings.HasPrefix(raw, "data:") && !strings.HasPrefix(raw, "data:image/png;base64,") {
			errs.Add("qr_image", "qr_image must be a base64 encoded PNG")
		}
	}

	return errs.Err()
}

type UpdateDoorRequest struct {
	DoorCode *string `json:"door_code,omitempty"`
	RoomName *string `json:"room_name,omitempty"`
	Location *string `json:"location,omitempty"`
}

func (r *UpdateDoorRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DoorCode != nil && !validator.IsValidDoorCode(*r.DoorCode) {
		errs.Add("door_code", "door_code must be 2-32 characters of letters, numbers, underscores or hyphens")
	}
	if r.RoomName != nil && validator.IsEmpty(*r.RoomName) {
		errs.Add("room_name", "room_name must not be empty")
	}
	if r.Location != nil && validator.IsEmpty(*r.Location) {
		errs.Add("location", "location must not be empty")
	}

	return errs.Err()
}

type UpdateDoorStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateDoorStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Status) {
		errs.Add("status", "status is required")
	} else if !Status(r.Status).IsValid() {
		errs.Add("status", "status must be one of active, inactive, maintenance")
	}

	return errs.Err()
}

type DoorFilter struct {
	CompanyID *string `json:"-"`
	Status    *string `json:"status,omitempty"`
	Search    *string `json:"search,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *DoorFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of active, inactive, maintenance")
	}

	return errs.Err()
}

type ListDoorResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Doors      []DoorResponse `json:"doors"`
}
