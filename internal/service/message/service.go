package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type MessageServiceImpl struct {
	messageRepo message.MessageRepository
	notifier    message.ReplyNotifier
}

// NewMessageService returns the contact message service. notifier may be nil,
// in which case replies are stored without sending an email.
func NewMessageService(messageRepo message.MessageRepository, notifier message.ReplyNotifier) message.MessageService {
	return &MessageServiceImpl{
		messageRepo: messageRepo,
		notifier:    notifier,
	}
}

// Create implements message.MessageService.
func (s *MessageServiceImpl) Create(ctx context.Context, principal user.Principal, req message.CreateMessageRequest) (message.MessageResponse, error) {
	if err := principal.Require(user.PermissionMessageCreate); err != nil {
		return message.MessageResponse{}, err
	}
	if principal.Company() == "" {
		return message.MessageResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return message.MessageResponse{}, err
	}

	created, err := s.messageRepo.Create(ctx, message.Message{
		CompanyID: principal.Company(),
		UserID:    principal.SubjectID,
		Message:   strings.TrimSpace(req.Message),
	})
	if err != nil {
		return message.MessageResponse{}, fmt.Errorf("failed to create message: %w", err)
	}
	return created.ToResponse(), nil
}

// ListOwn implements message.MessageService.
func (s *MessageServiceImpl) ListOwn(ctx context.Context, principal user.Principal, filter message.MessageFilter) (message.ListMessageResponse, error) {
	if err := principal.Require(user.PermissionMessageCreate); err != nil {
		return message.ListMessageResponse{}, err
	}
	self := principal.SubjectID
	filter.UserID = &self
	filter.CompanyID = nil
	return s.list(ctx, filter, false)
}

// MarkReplyRead implements message.MessageService.
func (s *MessageServiceImpl) MarkReplyRead(ctx context.Context, principal user.Principal, id string) (message.MessageResponse, error) {
	m, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return message.MessageResponse{}, err
	}
	if !principal.IsSelf(m.UserID) {
		return message.MessageResponse{}, message.ErrMessageNotFound
	}
	if m.Reply == nil {
		return message.MessageResponse{}, message.ErrNoReplyToRead
	}

	updated, err := s.messageRepo.SetUserStatus(ctx, id, message.UserStatusRead)
	if err != nil {
		return message.MessageResponse{}, err
	}
	return updated.ToResponse(), nil
}

// List implements message.MessageService.
func (s *MessageServiceImpl) List(ctx context.Context, principal user.Principal, filter message.MessageFilter) (message.ListMessageResponse, error) {
	if err := principal.Require(user.PermissionMessageManage); err != nil {
		return message.ListMessageResponse{}, err
	}
	filter.CompanyID = principal.ScopeFor()
	return s.list(ctx, filter, true)
}

func (s *MessageServiceImpl) list(ctx context.Context, filter message.MessageFilter, withUnread bool) (message.ListMessageResponse, error) {
	if err := filter.Validate(); err != nil {
		return message.ListMessageResponse{}, err
	}
	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	messages, total, err := s.messageRepo.List(ctx, filter)
	if err != nil {
		return message.ListMessageResponse{}, fmt.Errorf("failed to list messages: %w", err)
	}

	var unread int64
	if withUnread {
		unread, err = s.messageRepo.CountUnread(ctx, filter.CompanyID)
		if err != nil {
			return message.ListMessageResponse{}, fmt.Errorf("failed to count unread messages: %w", err)
		}
	}

	responses := make([]message.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, m.ToResponse())
	}

	return message.ListMessageResponse{
		TotalCount:  total,
		UnreadCount: unread,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  validator.TotalPages(total, filter.Limit),
		Messages:    responses,
	}, nil
}

func (s *MessageServiceImpl) getScoped(ctx context.Context, principal user.Principal, id string) (message.Message, error) {
	if err := principal.Require(user.PermissionMessageManage); err != nil {
		return message.Message{}, err
	}
	m, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return message.Message{}, err
	}
	if !principal.CanAccessCompany(m.CompanyID) {
		return message.Message{}, message.ErrMessageNotFound
	}
	return m, nil
}

// ToggleRead implements message.MessageService.
func (s *MessageServiceImpl) ToggleRead(ctx context.Context, principal user.Principal, id string) (message.MessageResponse, error) {
	m, err := s.getScoped(ctx, principal, id)
	if err != nil {
		return message.MessageResponse{}, err
	}

	next := message.StatusRead
	if m.Status == message.StatusRead {
		next = message.StatusUnread
	}

	updated, err := s.messageRepo.SetStatus(ctx, id, next)
	if err != nil {
		return message.MessageResponse{}, err
	}
	return updated.ToResponse(), nil
}

// Reply implements message.MessageService. The user is emailed when a
// notifier is configured; a failed email does not fail the reply.
func (s *MessageServiceImpl) Reply(ctx context.Context, principal user.Principal, id string, req message.ReplyRequest) (message.MessageResponse, error) {
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return message.MessageResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return message.MessageResponse{}, err
	}

	replied, err := s.messageRepo.SaveReply(ctx, id, strings.TrimSpace(req.Reply))
	if err != nil {
		return message.MessageResponse{}, err
	}

	if s.notifier != nil && replied.UserEmail != nil {
		mail := message.ReplyEmail{
			To:              *replied.UserEmail,
			OriginalMessage: replied.Message,
			Reply:           *replied.Reply,
		}
		if replied.UserName != nil {
			mail.UserName = *replied.UserName
		}
		if err := s.notifier.QueueReplyEmail(ctx, mail); err != nil {
			slog.Error("Failed to queue reply email", "message_id", id, "error", err)
		}
	}

	return replied.ToResponse(), nil
}
