package message

import (
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type MessageResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   *string   `json:"user_name,omitempty"`
	UserCode   *string   `json:"user_code,omitempty"`
	Message    string    `json:"message"`
	Reply      *string   `json:"reply"`
	Status     string    `json:"status"`
	UserStatus string    `json:"user_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateMessageRequest struct {
	Message string `json:"message"`
}

func (r *CreateMessageRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Message) {
		errs.Add("message", "message is required")
	} else if len(r.Message) > 5000 {
		errs.Add("message", "message must not exceed 5000 characters")
	}

	return errs.Err()
}

type ReplyRequest struct {
	Reply string `json:"reply"`
}

func (r *ReplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reply) {
		errs.Add("reply", "reply is required")
	} else if len(r.Reply) > 5000 {
		errs.Add("reply", "reply must not exceed 5000 characters")
	}

	return errs.Err()
}

type MessageFilter struct {
	CompanyID *string `json:"-"`
	UserID    *string `json:"-"`
	Status    *string `json:"status,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *MessageFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != string(StatusUnread) && *f.Status != string(StatusRead) {
		errs.Add("status", "status must be one of unread, read")
	}

	return errs.Err()
}

type ListMessageResponse struct {
	TotalCount  int64             `json:"total_count"`
	UnreadCount int64             `json:"unread_count"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	TotalPages  int               `json:"total_pages"`
	Messages    []MessageResponse `json:"messages"`
}
