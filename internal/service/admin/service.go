package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

type AdminServiceImpl struct {
	adminRepo   admin.AdminRepository
	companyRepo company.CompanyRepository
}

func NewAdminService(adminRepo admin.AdminRepository, companyRepo company.CompanyRepository) admin.AdminService {
	return &AdminServiceImpl{
		adminRepo:   adminRepo,
		companyRepo: companyRepo,
	}
}

// Create implements admin.AdminService.
func (s *AdminServiceImpl) Create(ctx context.Context, principal user.Principal, req admin.CreateAdminRequest) (admin.AdminResponse, error) {
	if err := principal.Require(user.PermissionAdminManage); err != nil {
		return admin.AdminResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return admin.AdminResponse{}, err
	}

	if _, err := s.companyRepo.GetByID(ctx, req.CompanyID); err != nil {
		return admin.AdminResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return admin.AdminResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashedPassword)
	companyID := req.CompanyID

	created, err := s.adminRepo.Create(ctx, admin.Admin{
		CompanyID:    &companyID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: &hash,
		Role:         user.RoleAdmin,
	})
	if err != nil {
		return admin.AdminResponse{}, err
	}
	slog.Info("Admin created", "admin_id", created.ID, "company_id", companyID, "created_by", principal.SubjectID)

	return created.ToResponse(), nil
}

// List implements admin.AdminService.
func (s *AdminServiceImpl) List(ctx context.Context, principal user.Principal) ([]admin.AdminResponse, error) {
	if err := principal.Require(user.PermissionAdminManage); err != nil {
		return nil, err
	}

	admins, err := s.adminRepo.List(ctx, principal.ScopeFor())
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	responses := make([]admin.AdminResponse, 0, len(admins))
	for _, a := range admins {
		responses = append(responses, a.ToResponse())
	}
	return responses, nil
}

// GetProfile implements admin.AdminService.
func (s *AdminServiceImpl) GetProfile(ctx context.Context, principal user.Principal) (admin.AdminResponse, error) {
	if !principal.IsAdmin() {
		return admin.AdminResponse{}, user.ErrAdminPrivilegeRequired
	}
	a, err := s.adminRepo.GetByID(ctx, principal.SubjectID)
	if err != nil {
		return admin.AdminResponse{}, err
	}
	return a.ToResponse(), nil
}

// UpdateProfile implements admin.AdminService.
func (s *AdminServiceImpl) UpdateProfile(ctx context.Context, principal user.Principal, req admin.UpdateProfileRequest) (admin.AdminResponse, error) {
	if !principal.IsAdmin() {
		return admin.AdminResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return admin.AdminResponse{}, err
	}
	if req.Name == nil && req.Email == nil && req.Password == nil {
		return admin.AdminResponse{}, admin.ErrNoFieldsToUpdate
	}

	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return admin.AdminResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		hash := string(hashedPassword)
		req.PasswordHash = &hash
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}

	updated, err := s.adminRepo.Update(ctx, principal.SubjectID, req)
	if err != nil {
		return admin.AdminResponse{}, err
	}
	return updated.ToResponse(), nil
}
