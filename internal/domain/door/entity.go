package door

import "time"

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

type Door struct {
	ID         string
	CompanyID  string
	DoorCode   string
	RoomName   string
	Location   string
	Status     Status
	QRData     *string
	QRImageURL *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// DeletedAt is set once the door is retired. Retired doors are hidden
	// from every lookup but stay referenced by history and past requests.
	DeletedAt *time.Time
}

// IsOperational reports whether scans at the door may be granted.
func (d Door) IsOperational() bool {
	return d.Status == StatusActive
}

func (d Door) ToResponse() DoorResponse {
	return DoorResponse{
		ID:         d.ID,
		CompanyID:  d.CompanyID,
		DoorCode:   d.DoorCode,
		RoomName:   d.RoomName,
		Location:   d.Location,
		Status:     string(d.Status),
		QRData:     d.QRData,
		QRImageURL: d.QRImageURL,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
