package admin

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrAdminNotFound    = apperror.NotFound("admin not found")
	ErrAdminEmailExists = apperror.Conflict("email already registered")
	ErrNoFieldsToUpdate = apperror.Validation("no updatable fields provided")
)
