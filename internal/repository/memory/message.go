package memory

import (
	"context"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
)

type messageRepository struct {
	s *Store
}

func (s *Store) Messages() message.MessageRepository {
	return &messageRepository{s: s}
}

func (s *Store) joinMessage(m message.Message) message.Message {
	if u, ok := s.data.users[m.UserID]; ok {
		m.UserName = strPtr(u.FullName())
		m.UserEmail = strPtr(u.Email)
		m.UserCode = strPtr(u.UserCode)
	}
	return m
}

func (r *messageRepository) Create(ctx context.Context, m message.Message) (message.Message, error) {
	defer r.s.lockWrite(ctx)()

	m.ID = newID()
	m.Reply = nil
	m.Status = message.StatusUnread
	m.UserStatus = message.UserStatusNone
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	r.s.data.messages[m.ID] = m
	return r.s.joinMessage(m), nil
}

func (r *messageRepository) GetByID(_ context.Context, id string) (message.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.data.messages[id]
	if !ok {
		return message.Message{}, message.ErrMessageNotFound
	}
	return r.s.joinMessage(m), nil
}

func (r *messageRepository) List(_ context.Context, filter message.MessageFilter) ([]message.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]message.Message, 0)
	for _, m := range r.s.data.messages {
		if filter.CompanyID != nil && m.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.UserID != nil && m.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(m.Status) != *filter.Status {
			continue
		}
		matched = append(matched, r.s.joinMessage(m))
	}
	sortNewestFirst(matched, func(m message.Message) time.Time { return m.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *messageRepository) CountUnread(_ context.Context, companyID *string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, m := range r.s.data.messages {
		if companyID != nil && m.CompanyID != *companyID {
			continue
		}
		if m.Status == message.StatusUnread {
			n++
		}
	}
	return n, nil
}

func (r *messageRepository) update(ctx context.Context, id string, fn func(m *message.Message)) (message.Message, error) {
	defer r.s.lockWrite(ctx)()

	m, ok := r.s.data.messages[id]
	if !ok {
		return message.Message{}, message.ErrMessageNotFound
	}
	fn(&m)
	m.UpdatedAt = r.s.now()
	r.s.data.messages[id] = m
	return r.s.joinMessage(m), nil
}

func (r *messageRepository) SetStatus(ctx context.Context, id string, status message.Status) (message.Message, error) {
	return r.update(ctx, id, func(m *message.Message) { m.Status = status })
}

func (r *messageRepository) SetUserStatus(ctx context.Context, id string, status message.UserStatus) (message.Message, error) {
	return r.update(ctx, id, func(m *message.Message) { m.UserStatus = status })
}

func (r *messageRepository) SaveReply(ctx context.Context, id string, reply string) (message.Message, error) {
	return r.update(ctx, id, func(m *message.Message) {
		m.Reply = strPtr(reply)
		m.Status = message.StatusRead
		m.UserStatus = message.UserStatusUnread
	})
}
