package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
	"github.com/securepass-ai/securepass-backend-go/internal/service/file"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	userRepo    user.UserRepository
	fileService file.FileService
}

func NewUserService(userRepo user.UserRepository, fileService file.FileService) user.UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		fileService: fileService,
	}
}

// getScoped loads a user and hides users of other companies as not found.
func (s *UserServiceImpl) getScoped(ctx context.Context, principal user.Principal, id string) (user.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !principal.CanAccessCompany(u.CompanyID) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// Register implements user.UserService.
func (s *UserServiceImpl) Register(ctx context.Context, principal user.Principal, req user.RegisterUserRequest) (user.UserResponse, error) {
	if err := principal.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if principal.Company() == "" {
		return user.UserResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	adminID := principal.SubjectID
	created, err := s.userRepo.Create(ctx, user.User{
		CompanyID:      principal.Company(),
		AdminID:        &adminID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		UserCode:       strings.TrimSpace(req.UserCode),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:   string(hashedPassword),
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserCodeExists) || errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("User registered", "user_id", created.ID, "company_id", created.CompanyID, "admin_id", adminID)

	return created.ToResponse(), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, principal user.Principal, filter user.UserFilter) (user.ListUserResponse, error) {
	if err := principal.Require(user.PermissionUserView); err != nil {
		return user.ListUserResponse{}, err
	}
	filter.CompanyID = principal.ScopeFor()
	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	return user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Users:      responses,
	}, nil
}

// Get implements user.UserService. Users may read their own record.
func (s *UserServiceImpl) Get(ctx context.Context, principal user.Principal, id string) (user.UserResponse, error) {
	if !principal.IsSelf(id) {
		if err := principal.Require(user.PermissionUserView); err != nil {
			return user.UserResponse{}, err
		}
	}

	u, err := s.getScoped(ctx, principal, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := principal.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return user.UserResponse{}, err
	}

	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		hash := string(hashedPassword)
		req.PasswordHash = &hash
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}

	updated, err := s.userRepo.Update(ctx, id, req)
	if err != nil {
		return user.UserResponse{}, err
	}
	return updated.ToResponse(), nil
}

// Delete implements user.UserService. Requests, ledger entries, history and
// messages of the user are removed with it.
func (s *UserServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if err := principal.Require(user.PermissionUserManage); err != nil {
		return err
	}
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("User deleted", "user_id", id, "deleted_by", principal.SubjectID)
	return nil
}

// UploadProfilePicture implements user.UserService.
func (s *UserServiceImpl) UploadProfilePicture(ctx context.Context, principal user.Principal, id string, file io.Reader, filename string) (user.UserResponse, error) {
	if err := principal.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return user.UserResponse{}, err
	}

	url, err := s.fileService.UploadProfilePicture(ctx, id, file, filename)
	if err != nil {
		return user.UserResponse{}, err
	}

	updated, err := s.userRepo.Update(ctx, id, user.UpdateUserRequest{ProfilePicture: &url})
	if err != nil {
		return user.UserResponse{}, err
	}
	return updated.ToResponse(), nil
}
