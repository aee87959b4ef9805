package admin

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type AdminService interface {
	Create(ctx context.Context, principal user.Principal, req CreateAdminRequest) (AdminResponse, error)
	List(ctx context.Context, principal user.Principal) ([]AdminResponse, error)
	GetProfile(ctx context.Context, principal user.Principal) (AdminResponse, error)
	UpdateProfile(ctx context.Context, principal user.Principal, req UpdateProfileRequest) (AdminResponse, error)
}
