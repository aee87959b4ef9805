package postgresql

import (
	"context"
	"fmt"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type messageRepositoryImpl struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) message.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

const messageSelect = `
	SELECT m.id, m.company_id, m.user_id, m.message, m.reply, m.status, m.user_status,
		   m.created_at, m.updated_at,
		   u.first_name || ' ' || u.last_name, u.email, u.user_code
	FROM contact_messages m
	JOIN users u ON u.id = m.user_id`

func scanMessage(row rowScanner) (message.Message, error) {
	var m message.Message
	var status, userStatus, userName, userEmail, userCode string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.UserID, &m.Message, &m.Reply, &status, &userStatus,
		&m.CreatedAt, &m.UpdatedAt,
		&userName, &userEmail, &userCode,
	)
	if err != nil {
		return message.Message{}, err
	}
	m.Status = message.Status(status)
	m.UserStatus = message.UserStatus(userStatus)
	m.UserName = &userName
	m.UserEmail = &userEmail
	m.UserCode = &userCode
	return m, nil
}

// Create implements message.MessageRepository.
func (r *messageRepositoryImpl) Create(ctx context.Context, msg message.Message) (message.Message, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO contact_messages (company_id, user_id, message, status, user_status)
		VALUES ($1, $2, $3, 'unread', 'none')
		RETURNING id
	`, msg.CompanyID, msg.UserID, msg.Message).Scan(&id)
	if err != nil {
		return message.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements message.MessageRepository.
func (r *messageRepositoryImpl) GetByID(ctx context.Context, id string) (message.Message, error) {
	q := GetQuerier(ctx, r.db)

	m, err := scanMessage(q.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return message.Message{}, message.ErrMessageNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

// List implements message.MessageRepository.
func (r *messageRepositoryImpl) List(ctx context.Context, filter message.MessageFilter) ([]message.Message, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.CompanyID != nil {
		whereClause += fmt.Sprintf(" AND m.company_id = $%d", argIndex)
		args = append(args, *filter.CompanyID)
		argIndex++
	}
	if filter.UserID != nil {
		whereClause += fmt.Sprintf(" AND m.user_id = $%d", argIndex)
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND m.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM contact_messages m "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`%s
		%s
		ORDER BY m.created_at DESC
		LIMIT $%d OFFSET $%d
	`, messageSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]message.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// CountUnread implements message.MessageRepository.
func (r *messageRepositoryImpl) CountUnread(ctx context.Context, companyID *string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT COUNT(*) FROM contact_messages WHERE status = 'unread'"
	args := []interface{}{}
	if companyID != nil {
		query += " AND company_id = $1"
		args = append(args, *companyID)
	}

	var count int64
	err := q.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *messageRepositoryImpl) update(ctx context.Context, id string, set string, args ...interface{}) (message.Message, error) {
	q := GetQuerier(ctx, r.db)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contact_messages SET %s, updated_at = NOW() WHERE id = $%d`, set, len(args))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return message.Message{}, fmt.Errorf("failed to update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return message.Message{}, message.ErrMessageNotFound
	}
	return r.GetByID(ctx, id)
}

// SetStatus implements message.MessageRepository.
func (r *messageRepositoryImpl) SetStatus(ctx context.Context, id string, status message.Status) (message.Message, error) {
	return r.update(ctx, id, "status = $1", string(status))
}

// SetUserStatus implements message.MessageRepository.
func (r *messageRepositoryImpl) SetUserStatus(ctx context.Context, id string, status message.UserStatus) (message.Message, error) {
	return r.update(ctx, id, "user_status = $1", string(status))
}

// SaveReply implements message.MessageRepository.
func (r *messageRepositoryImpl) SaveReply(ctx context.Context, id string, reply string) (message.Message, error) {
	return r.update(ctx, id, "reply = $1, status = 'read', user_status = 'unread'", reply)
}
