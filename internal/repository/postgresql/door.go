package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type doorRepositoryImpl struct {
	db *database.DB
}

func NewDoorRepository(db *database.DB) door.DoorRepository {
	return &doorRepositoryImpl{db: db}
}

const doorColumns = `id, company_id, door_code, room_name, location, status, qr_data, qr_image_url, created_at, updated_at`

func scanDoor(row rowScanner) (door.Door, error) {
	var d door.Door
	var status string
	err := row.Scan(
		&d.ID,
		&d.CompanyID,
		&d.DoorCode,
		&d.RoomName,
		&d.Location,
		&status,
		&d.QRData,
		&d.QRImageURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	d.Status = door.Status(status)
	return d, err
}

// Create implements door.DoorRepository.
func (r *doorRepositoryImpl) Create(ctx context.Context, newDoor door.Door) (door.Door, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO doors (company_id, door_code, room_name, location, status, qr_data, qr_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + doorColumns

	created, err := scanDoor(q.QueryRow(ctx, query,
		newDoor.CompanyID,
		newDoor.DoorCode,
		newDoor.RoomName,
		newDoor.Location,
		string(newDoor.Status),
		newDoor.QRData,
		newDoor.QRImageURL,
	))
	if err != nil {
		if isUniqueViolation(err, "uq_doors_company_code") {
			return door.Door{}, door.ErrDoorCodeExists
		}
		return door.Door{}, fmt.Errorf("failed to create door: %w", err)
	}
	return created, nil
}

// GetByID implements door.DoorRepository.
func (r *doorRepositoryImpl) GetByID(ctx context.Context, id string) (door.Door, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanDoor(q.QueryRow(ctx, `SELECT `+doorColumns+` FROM doors WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if isNoRows(err) {
			return door.Door{}, door.ErrDoorNotFound
		}
		return door.Door{}, err
	}
	return found, nil
}

// List implements door.DoorRepository.
func (r *doorRepositoryImpl) List(ctx context.Context, filter door.DoorFilter) ([]door.Door, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if filter.CompanyID != nil {
		whereClause += fmt.Sprintf(" AND company_id = $%d", argIndex)
		args = append(args, *filter.CompanyID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereClause += fmt.Sprintf(" AND (door_code ILIKE $%d OR room_name ILIKE $%d OR location ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM doors "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM doors
		%s
		ORDER BY door_code ASC
		LIMIT $%d OFFSET $%d
	`, doorColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	doors := make([]door.Door, 0)
	for rows.Next() {
		d, err := scanDoor(rows)
		if err != nil {
			return nil, 0, err
		}
		doors = append(doors, d)
	}
	return doors, total, rows.Err()
}

// Update implements door.DoorRepository.
func (r *doorRepositoryImpl) Update(ctx context.Context, id string, req door.UpdateDoorRequest) (door.Door, error) {
	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if req.DoorCode != nil {
		updates = append(updates, fmt.Sprintf("door_code = $%d", argIdx))
		args = append(args, *req.DoorCode)
		argIdx++
	}
	if req.RoomName != nil {
		updates = append(updates, fmt.Sprintf("room_name = $%d", argIdx))
		args = append(args, *req.RoomName)
		argIdx++
	}
	if req.Location != nil {
		updates = append(updates, fmt.Sprintf("location = $%d", argIdx))
		args = append(args, *req.Location)
		argIdx++
	}

	if len(updates) == 0 {
		return door.Door{}, door.ErrNoFieldsToUpdate
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE doors SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s", strings.Join(updates, ", "), argIdx, doorColumns)
	args = append(args, id)

	updated, err := scanDoor(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return door.Door{}, door.ErrDoorNotFound
		}
		if isUniqueViolation(err, "uq_doors_company_code") {
			return door.Door{}, door.ErrDoorCodeExists
		}
		return door.Door{}, err
	}
	return updated, nil
}

// UpdateStatus implements door.DoorRepository.
func (r *doorRepositoryImpl) UpdateStatus(ctx context.Context, id string, status door.Status) (door.Door, error) {
	q := GetQuerier(ctx, r.db)

	updated, err := scanDoor(q.QueryRow(ctx, `
		UPDATE doors SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING `+doorColumns, string(status), id))
	if err != nil {
		if isNoRows(err) {
			return door.Door{}, door.ErrDoorNotFound
		}
		return door.Door{}, err
	}
	return updated, nil
}

// SetQRImageURL implements door.DoorRepository.
func (r *doorRepositoryImpl) SetQRImageURL(ctx context.Context, id string, url string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE doors SET qr_image_url = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return door.ErrDoorNotFound
	}
	return nil
}

// Delete implements door.DoorRepository. Run it inside a transaction so the
// door and its ledger entries go together.
func (r *doorRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE doors SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return door.ErrDoorNotFound
	}

	if _, err := q.Exec(ctx, `DELETE FROM door_access WHERE door_id = $1`, id); err != nil {
		return fmt.Errorf("failed to remove door access for retired door: %w", err)
	}
	return nil
}
