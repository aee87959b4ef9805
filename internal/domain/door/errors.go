package door

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrDoorNotFound     = apperror.NotFound("door not found")
	ErrDoorCodeExists   = apperror.Conflict("door code already exists in this company")
	ErrInvalidQRImage   = apperror.Validation("qr_image is not valid base64")
	ErrNoFieldsToUpdate = apperror.Validation("no updatable fields provided for door update")
)
