package user

import (
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	UserCode       string    `json:"user_code"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	FaceCount      int       `json:"face_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RegisterUserRequest represents request to register a door user
type RegisterUserRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	UserCode       string  `json:"user_code"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

func (r *RegisterUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	} else if len(r.FirstName) > 100 {
		errs.Add("first_name", "first_name must not exceed 100 characters")
	}

	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	} else if len(r.LastName) > 100 {
		errs.Add("last_name", "last_name must not exceed 100 characters")
	}

	if validator.IsEmpty(r.UserCode) {
		errs.Add("user_code", "user_code is required")
	} else if !validator.IsValidUserCode(r.UserCode) {
		errs.Add("user_code", "user_code must be 3-50 characters of letters, numbers, dots, underscores or hyphens")
	}

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	return errs.Err()
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Password       *string `json:"password,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	FaceCount      *int    `json:"face_count,omitempty"`

	// Set by the service after hashing Password.
	PasswordHash *string `json:"-"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name must not be empty")
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs.Add("last_name", "last_name must not be empty")
	}

	if r.Email != nil {
		if validator.IsEmpty(*r.Email) {
			errs.Add("email", "email must not be empty")
		} else if !validator.IsValidEmail(*r.Email) {
			errs.Add("email", "invalid email format")
		}
	}

	if r.Password != nil && len(*r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	if r.FaceCount != nil && *r.FaceCount < 0 {
		errs.Add("face_count", "face_count must not be negative")
	}

	return errs.Err()
}

// UserFilter narrows user listings. CompanyID is set from the caller's scope.
type UserFilter struct {
	CompanyID *string `json:"-"`
	Search    *string `json:"search,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}
