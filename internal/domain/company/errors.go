package company

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrCompanyNotFound  = apperror.NotFound("company not found")
	ErrNoFieldsToUpdate = apperror.Validation("no updatable fields provided for company update")
)
