package access

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrRequestNotFound         = apperror.NotFound("permission request not found")
	ErrRequestNotPending       = apperror.InvalidState("permission request has already been decided")
	ErrDuplicatePendingRequest = apperror.Validation("a pending request for this door already exists")
	ErrAccessAlreadyGranted    = apperror.Validation("user already has access to this door")
	ErrAccessEntryNotFound     = apperror.NotFound("door access entry not found")
	ErrUnknownUser             = apperror.Validation("user does not exist in this company")
	ErrUnknownDoor             = apperror.Validation("door does not exist in this company")
	ErrCrossCompanyReference   = apperror.Validation("user and door belong to different companies")
)
