package message

import "time"

type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// UserStatus tracks whether the sender has seen the admin's reply.
// UserStatusNone means no reply has been sent yet.
type UserStatus string

const (
	UserStatusUnread UserStatus = "unread"
	UserStatusRead   UserStatus = "read"
	UserStatusNone   UserStatus = "none"
)

type Message struct {
	ID         string
	CompanyID  string
	UserID     string
	Message    string
	Reply      *string
	Status     Status
	UserStatus UserStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Join
	UserName  *string
	UserEmail *string
	UserCode  *string
}

func (m Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		UserName:   m.UserName,
		UserCode:   m.UserCode,
		Message:    m.Message,
		Reply:      m.Reply,
		Status:     string(m.Status),
		UserStatus: string(m.UserStatus),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
