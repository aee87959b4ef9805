package company

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type CompanyService interface {
	Create(ctx context.Context, principal user.Principal, req CreateCompanyRequest) (CompanyResponse, error)
	List(ctx context.Context, principal user.Principal) ([]CompanyResponse, error)
	GetByID(ctx context.Context, principal user.Principal, id string) (CompanyResponse, error)
	Update(ctx context.Context, principal user.Principal, id string, req UpdateCompanyRequest) (CompanyResponse, error)
	Delete(ctx context.Context, principal user.Principal, id string) error
}
