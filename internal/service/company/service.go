package company

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
}

func NewCompanyService(companyRepository company.CompanyRepository) company.CompanyService {
	return &CompanyServiceImpl{CompanyRepository: companyRepository}
}

// Create implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Create of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Create(ctx context.Context, principal user.Principal, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if err := principal.Require(user.PermissionCompanyManage); err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	newCompany, err := c.CompanyRepository.Create(ctx, company.Company{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to create company: %w", err)
	}
	slog.Info("Company created", "company_id", newCompany.ID, "created_by", principal.SubjectID)

	return newCompany.ToResponse(), nil
}

// List implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).List of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) List(ctx context.Context, principal user.Principal) ([]company.CompanyResponse, error) {
	if err := principal.Require(user.PermissionCompanyManage); err != nil {
		return nil, err
	}

	companies, err := c.CompanyRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	responses := make([]company.CompanyResponse, 0, len(companies))
	for _, co := range companies {
		responses = append(responses, co.ToResponse())
	}
	return responses, nil
}

// GetByID implements company.CompanyService. Admins may read their own company.
// Subtle: this method shadows the method (CompanyRepository).GetByID of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) GetByID(ctx context.Context, principal user.Principal, id string) (company.CompanyResponse, error) {
	if !principal.Can(user.PermissionCompanyManage) && !(principal.IsAdmin() && principal.CanAccessCompany(id)) {
		return company.CompanyResponse{}, user.ErrInsufficientPermissions
	}

	companyData, err := c.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return companyData.ToResponse(), nil
}

// Update implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Update of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	if err := principal.Require(user.PermissionCompanyManage); err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}
	if req.Name == nil && req.Address == nil {
		return company.CompanyResponse{}, company.ErrNoFieldsToUpdate
	}

	updated, err := c.CompanyRepository.Update(ctx, id, req)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return updated.ToResponse(), nil
}

// Delete implements company.CompanyService. Users, doors and their access
// records are removed with the company.
// Subtle: this method shadows the method (CompanyRepository).Delete of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if err := principal.Require(user.PermissionCompanyManage); err != nil {
		return err
	}
	if err := c.CompanyRepository.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Company deleted", "company_id", id, "deleted_by", principal.SubjectID)
	return nil
}
