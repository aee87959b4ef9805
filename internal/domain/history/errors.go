package history

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrActiveEntryExists = apperror.Conflict("user already has an active entry at this door")
	ErrNoActiveEntry     = apperror.NotFound("no active entry for this user at this door")
	ErrExitBeforeEntry   = apperror.Validation("exit time precedes entry time")
	ErrUnknownUser       = apperror.Validation("user does not exist in this company")
	ErrUnknownDoor       = apperror.Validation("door does not exist in this company")
)
