package user

import (
	"errors"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"
)

var (
	ErrUserNotFound            = apperror.NotFound("user not found")
	ErrUserCodeExists          = apperror.Conflict("user code already registered")
	ErrUserEmailExists         = apperror.Conflict("email already registered")
	ErrNoFieldsToUpdate        = apperror.Validation("no updatable fields provided")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrSuperAdminRequired      = errors.New("super admin access required")
	ErrCompanyIDRequired       = errors.New("company ID is required")
)
