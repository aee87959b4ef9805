package access

import (
	"context"
	"time"
)

// PermissionRequestRepository - interface for permission_requests table
type PermissionRequestRepository interface {
	// Create fails with ErrDuplicatePendingRequest when a pending request for
	// the same user and door already exists.
	Create(ctx context.Context, request PermissionRequest) (PermissionRequest, error)
	GetByID(ctx context.Context, id string) (PermissionRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]PermissionRequest, int64, error)
	ExistsPending(ctx context.Context, userID, doorID string) (bool, error)
	// Decide moves a pending request to a terminal status. It fails with
	// ErrRequestNotPending if the request was already decided, so at most one
	// concurrent caller succeeds.
	Decide(ctx context.Context, id string, status RequestStatus, decidedBy string, decidedAt time.Time, rejectionReason *string) (PermissionRequest, error)
}

// LedgerRepository - interface for door_access table
type LedgerRepository interface {
	// Create fails with ErrAccessAlreadyGranted when the user already holds an
	// entry for the door.
	Create(ctx context.Context, entry AccessEntry) (AccessEntry, error)
	GetByID(ctx context.Context, id string) (AccessEntry, error)
	GetByUserAndDoor(ctx context.Context, userID, doorID string) (AccessEntry, error)
	ListByUser(ctx context.Context, userID string) ([]AccessEntry, error)
	ListByDoor(ctx context.Context, doorID string) ([]AccessEntry, error)
	Delete(ctx context.Context, id string) error
	// StampIn sets in_time and clears out_time. It reports whether an entry existed.
	StampIn(ctx context.Context, userID, doorID string, at time.Time) (bool, error)
	// StampOut sets out_time. It reports whether an entry existed.
	StampOut(ctx context.Context, userID, doorID string, at time.Time) (bool, error)
}
