package message

import "github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"

var (
	ErrMessageNotFound = apperror.NotFound("message not found")
	ErrNoReplyToRead   = apperror.InvalidState("message has no reply yet")
)
