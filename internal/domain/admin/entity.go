package admin

import (
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

// Admin is a dashboard account. Super admins have no company.
type Admin struct {
	ID              string
	CompanyID       *string
	Name            string
	Email           string
	PasswordHash    *string
	Role            user.Role
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	CompanyName *string
}

func (a Admin) Principal() user.Principal {
	return user.Principal{SubjectID: a.ID, Role: a.Role, CompanyID: a.CompanyID}
}

func (a Admin) ToResponse() AdminResponse {
	return AdminResponse{
		ID:            a.ID,
		CompanyID:     a.CompanyID,
		CompanyName:   a.CompanyName,
		Name:          a.Name,
		Email:         a.Email,
		Role:          string(a.Role),
		OAuthProvider: a.OAuthProvider,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
