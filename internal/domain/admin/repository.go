package admin

import "context"

type AdminRepository interface {
	Create(ctx context.Context, newAdmin Admin) (Admin, error)
	GetByID(ctx context.Context, id string) (Admin, error)
	GetByEmail(ctx context.Context, email string) (Admin, error)
	// List returns admins of companyID, or every admin when companyID is nil.
	List(ctx context.Context, companyID *string) ([]Admin, error)
	Update(ctx context.Context, id string, req UpdateProfileRequest) (Admin, error)
	LinkGoogleAccount(ctx context.Context, id string, googleID string) error
}
