package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
)

type ledgerRepositoryImpl struct {
	db *database.DB
}

// NewLedgerRepository returns the access ledger backed by the door_access table.
func NewLedgerRepository(db *database.DB) access.LedgerRepository {
	return &ledgerRepositoryImpl{db: db}
}

const ledgerSelect = `
	SELECT da.id, da.company_id, da.user_id, da.door_id, da.request_id,
		   da.in_time, da.out_time, da.date, da.created_at,
		   d.door_code, d.room_name
	FROM door_access da
	JOIN doors d ON d.id = da.door_id`

func scanAccessEntry(row rowScanner) (access.AccessEntry, error) {
	var e access.AccessEntry
	var doorCode, roomName string
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.DoorID, &e.RequestID,
		&e.InTime, &e.OutTime, &e.Date, &e.CreatedAt,
		&doorCode, &roomName,
	)
	if err != nil {
		return access.AccessEntry{}, err
	}
	e.DoorCode = &doorCode
	e.RoomName = &roomName
	return e, nil
}

// Create implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) Create(ctx context.Context, entry access.AccessEntry) (access.AccessEntry, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO door_access (company_id, user_id, door_id, request_id, in_time, out_time, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, entry.CompanyID, entry.UserID, entry.DoorID, entry.RequestID, entry.InTime, entry.OutTime, entry.Date).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "uq_door_access_user_door") {
			return access.AccessEntry{}, access.ErrAccessAlreadyGranted
		}
		return access.AccessEntry{}, fmt.Errorf("failed to create door access entry: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) GetByID(ctx context.Context, id string) (access.AccessEntry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanAccessEntry(q.QueryRow(ctx, ledgerSelect+` WHERE da.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return access.AccessEntry{}, access.ErrAccessEntryNotFound
		}
		return access.AccessEntry{}, err
	}
	return e, nil
}

// GetByUserAndDoor implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) GetByUserAndDoor(ctx context.Context, userID, doorID string) (access.AccessEntry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanAccessEntry(q.QueryRow(ctx, ledgerSelect+` WHERE da.user_id = $1 AND da.door_id = $2`, userID, doorID))
	if err != nil {
		if isNoRows(err) {
			return access.AccessEntry{}, access.ErrAccessEntryNotFound
		}
		return access.AccessEntry{}, err
	}
	return e, nil
}

// ListByUser implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]access.AccessEntry, error) {
	return r.list(ctx, ledgerSelect+` WHERE da.user_id = $1 ORDER BY da.date DESC`, userID)
}

// ListByDoor implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) ListByDoor(ctx context.Context, doorID string) ([]access.AccessEntry, error) {
	return r.list(ctx, ledgerSelect+` WHERE da.door_id = $1 ORDER BY da.date DESC`, doorID)
}

func (r *ledgerRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]access.AccessEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]access.AccessEntry, 0)
	for rows.Next() {
		e, err := scanAccessEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM door_access WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrAccessEntryNotFound
	}
	return nil
}

// StampIn implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) StampIn(ctx context.Context, userID, doorID string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE door_access SET in_time = $1, out_time = NULL
		WHERE user_id = $2 AND door_id = $3
	`, at, userID, doorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StampOut implements access.LedgerRepository.
func (r *ledgerRepositoryImpl) StampOut(ctx context.Context, userID, doorID string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE door_access SET out_time = $1
		WHERE user_id = $2 AND door_id = $3
	`, at, userID, doorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
