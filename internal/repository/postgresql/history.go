package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type historyRepositoryImpl struct {
	db *database.DB
}

func NewHistoryRepository(db *database.DB) history.HistoryRepository {
	return &historyRepositoryImpl{db: db}
}

const historySelect = `
	SELECT h.id, h.company_id, h.user_id, h.door_id, h.entry_time, h.exit_time, h.status,
		   h.created_at, h.updated_at, d.door_code, d.room_name
	FROM access_history h
	JOIN doors d ON d.id = h.door_id`

func scanHistoryEntry(row rowScanner) (history.Entry, error) {
	var e history.Entry
	var status, doorCode, roomName string
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.DoorID, &e.EntryTime, &e.ExitTime, &status,
		&e.CreatedAt, &e.UpdatedAt, &doorCode, &roomName,
	)
	if err != nil {
		return history.Entry{}, err
	}
	e.Status = history.Status(status)
	e.DoorCode = &doorCode
	e.RoomName = &roomName
	return e, nil
}

// Create implements history.HistoryRepository.
func (r *historyRepositoryImpl) Create(ctx context.Context, entry history.Entry) (history.Entry, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO access_history (company_id, user_id, door_id, entry_time, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING id
	`, entry.CompanyID, entry.UserID, entry.DoorID, entry.EntryTime).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "uq_access_history_active") {
			return history.Entry{}, history.ErrActiveEntryExists
		}
		return history.Entry{}, fmt.Errorf("failed to create history entry: %w", err)
	}

	return r.getByID(ctx, id)
}

func (r *historyRepositoryImpl) getByID(ctx context.Context, id string) (history.Entry, error) {
	q := GetQuerier(ctx, r.db)
	return scanHistoryEntry(q.QueryRow(ctx, historySelect+` WHERE h.id = $1`, id))
}

// GetActiveForUpdate implements history.HistoryRepository.
func (r *historyRepositoryImpl) GetActiveForUpdate(ctx context.Context, userID, doorID string) (history.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanHistoryEntry(q.QueryRow(ctx, historySelect+`
		WHERE h.user_id = $1 AND h.door_id = $2 AND h.status = 'active'
		FOR UPDATE OF h
	`, userID, doorID))
	if err != nil {
		if isNoRows(err) {
			return history.Entry{}, history.ErrNoActiveEntry
		}
		return history.Entry{}, err
	}
	return e, nil
}

// Close implements history.HistoryRepository.
func (r *historyRepositoryImpl) Close(ctx context.Context, id string, exitTime time.Time) (history.Entry, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE access_history
		SET exit_time = $1, status = 'exited', updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`, exitTime, id)
	if err != nil {
		return history.Entry{}, fmt.Errorf("failed to close history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return history.Entry{}, history.ErrNoActiveEntry
	}

	return r.getByID(ctx, id)
}

// ListByUser implements history.HistoryRepository.
func (r *historyRepositoryImpl) ListByUser(ctx context.Context, filter history.HistoryFilter) ([]history.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE h.user_id = $1"
	args := []interface{}{filter.UserID}
	argIndex := 2

	if filter.DoorID != nil {
		whereClause += fmt.Sprintf(" AND h.door_id = $%d", argIndex)
		args = append(args, *filter.DoorID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND h.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM access_history h "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`%s
		%s
		ORDER BY h.entry_time DESC
		LIMIT $%d OFFSET $%d
	`, historySelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]history.Entry, 0)
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
