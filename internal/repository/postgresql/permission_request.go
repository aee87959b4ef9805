package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type permissionRequestRepositoryImpl struct {
	db *database.DB
}

func NewPermissionRequestRepository(db *database.DB) access.PermissionRequestRepository {
	return &permissionRequestRepositoryImpl{db: db}
}

const permissionRequestSelect = `
	SELECT pr.id, pr.company_id, pr.user_id, pr.door_id, pr.status, pr.reason,
		   pr.decided_by, pr.decided_at, pr.rejection_reason, pr.created_at, pr.updated_at,
		   u.first_name || ' ' || u.last_name AS user_name,
		   d.door_code, d.room_name
	FROM permission_requests pr
	JOIN users u ON u.id = pr.user_id
	JOIN doors d ON d.id = pr.door_id`

func scanPermissionRequest(row rowScanner) (access.PermissionRequest, error) {
	var req access.PermissionRequest
	var status string
	var userName, doorCode, roomName string
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.UserID, &req.DoorID, &status, &req.Reason,
		&req.DecidedBy, &req.DecidedAt, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
		&userName,
		&doorCode, &roomName,
	)
	if err != nil {
		return access.PermissionRequest{}, err
	}
	req.Status = access.RequestStatus(status)
	req.UserName = &userName
	req.DoorCode = &doorCode
	req.RoomName = &roomName
	return req, nil
}

// Create implements access.PermissionRequestRepository.
func (r *permissionRequestRepositoryImpl) Create(ctx context.Context, request access.PermissionRequest) (access.PermissionRequest, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO permission_requests (company_id, user_id, door_id, status, reason)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id
	`, request.CompanyID, request.UserID, request.DoorID, request.Reason).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "uq_permission_requests_pending") {
			return access.PermissionRequest{}, access.ErrDuplicatePendingRequest
		}
		return access.PermissionRequest{}, fmt.Errorf("failed to create permission request: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements access.PermissionRequestRepository.
func (r *permissionRequestRepositoryImpl) GetByID(ctx context.Context, id string) (access.PermissionRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanPermissionRequest(q.QueryRow(ctx, permissionRequestSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return access.PermissionRequest{}, access.ErrRequestNotFound
		}
		return access.PermissionRequest{}, err
	}
	return req, nil
}

// List implements access.PermissionRequestRepository.
func (r *permissionRequestRepositoryImpl) List(ctx context.Context, filter access.RequestFilter) ([]access.PermissionRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.CompanyID != nil {
		whereClause += fmt.Sprintf(" AND pr.company_id = $%d", argIndex)
		args = append(args, *filter.CompanyID)
		argIndex++
	}
	if filter.UserID != nil {
		whereClause += fmt.Sprintf(" AND pr.user_id = $%d", argIndex)
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.DoorID != nil {
		whereClause += fmt.Sprintf(" AND pr.door_id = $%d", argIndex)
		args = append(args, *filter.DoorID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND pr.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	// Count total
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM permission_requests pr "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`%s
		%s
		ORDER BY pr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, permissionRequestSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]access.PermissionRequest, 0)
	for rows.Next() {
		req, err := scanPermissionRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// ExistsPending implements access.PermissionRequestRepository.
func (r *permissionRequestRepositoryImpl) ExistsPending(ctx context.Context, userID, doorID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM permission_requests WHERE user_id = $1 AND door_id = $2 AND status = 'pending')
	`, userID, doorID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Decide implements access.PermissionRequestRepository.
func (r *permissionRequestRepositoryImpl) Decide(ctx context.Context, id string, status access.RequestStatus, decidedBy string, decidedAt time.Time, rejectionReason *string) (access.PermissionRequest, error) {
	q := GetQuerier(ctx, r.db)

	var updatedID string
	err := q.QueryRow(ctx, `
		UPDATE permission_requests
		SET status = $1, decided_by = $2, decided_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
		RETURNING id
	`, string(status), decidedBy, decidedAt, rejectionReason, id).Scan(&updatedID)
	if err != nil {
		if !isNoRows(err) {
			return access.PermissionRequest{}, fmt.Errorf("failed to decide permission request: %w", err)
		}
		// Either missing or no longer pending.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, access.ErrRequestNotFound) {
				return access.PermissionRequest{}, access.ErrRequestNotFound
			}
			return access.PermissionRequest{}, getErr
		}
		return access.PermissionRequest{}, access.ErrRequestNotPending
	}

	return r.GetByID(ctx, updatedID)
}
