package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Platform operator - manages companies and admins
	RoleAdmin      Role = "admin"       // Company admin - manages doors, users and requests
	RoleUser       Role = "user"        // Door user - requests access and scans doors
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is a person who holds door access within one company.
type User struct {
	ID             string
	CompanyID      string
	AdminID        *string
	FirstName      string
	LastName       string
	UserCode       string
	Email          string
	PasswordHash   string
	ProfilePicture *string
	FaceCount      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		CompanyID:      u.CompanyID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		UserCode:       u.UserCode,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		FaceCount:      u.FaceCount,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
