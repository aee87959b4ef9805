package message

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type MessageService interface {
	Create(ctx context.Context, principal user.Principal, req CreateMessageRequest) (MessageResponse, error)
	ListOwn(ctx context.Context, principal user.Principal, filter MessageFilter) (ListMessageResponse, error)
	MarkReplyRead(ctx context.Context, principal user.Principal, id string) (MessageResponse, error)

	List(ctx context.Context, principal user.Principal, filter MessageFilter) (ListMessageResponse, error)
	ToggleRead(ctx context.Context, principal user.Principal, id string) (MessageResponse, error)
	Reply(ctx context.Context, principal user.Principal, id string, req ReplyRequest) (MessageResponse, error)
}

// ReplyEmail is the mail sent to a user when an admin answers their message.
type ReplyEmail struct {
	To              string
	UserName        string
	OriginalMessage string
	Reply           string
}

// ReplyNotifier delivers reply emails, possibly asynchronously.
type ReplyNotifier interface {
	QueueReplyEmail(ctx context.Context, mail ReplyEmail) error
}
