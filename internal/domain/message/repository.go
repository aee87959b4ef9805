package message

import "context"

type MessageRepository interface {
	Create(ctx context.Context, msg Message) (Message, error)
	GetByID(ctx context.Context, id string) (Message, error)
	List(ctx context.Context, filter MessageFilter) ([]Message, int64, error)
	CountUnread(ctx context.Context, companyID *string) (int64, error)
	SetStatus(ctx context.Context, id string, status Status) (Message, error)
	SetUserStatus(ctx context.Context, id string, status UserStatus) (Message, error)
	// SaveReply stores the reply, marks the message read and flags it unread for the sender.
	SaveReply(ctx context.Context, id string, reply string) (Message, error)
}
