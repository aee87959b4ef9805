package memory

import (
	"context"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
)

type permissionRequestRepository struct {
	s *Store
}

func (s *Store) PermissionRequests() access.PermissionRequestRepository {
	return &permissionRequestRepository{s: s}
}

func (s *Store) joinRequest(pr access.PermissionRequest) access.PermissionRequest {
	if u, ok := s.data.users[pr.UserID]; ok {
		pr.UserName = strPtr(u.FullName())
	}
	if d, ok := s.data.doors[pr.DoorID]; ok {
		pr.DoorCode = strPtr(d.DoorCode)
		pr.RoomName = strPtr(d.RoomName)
	}
	return pr
}

func (r *permissionRequestRepository) Create(ctx context.Context, pr access.PermissionRequest) (access.PermissionRequest, error) {
	defer r.s.lockWrite(ctx)()

	for _, other := range r.s.data.requests {
		if other.UserID == pr.UserID && other.DoorID == pr.DoorID && other.Status == access.RequestStatusPending {
			return access.PermissionRequest{}, access.ErrDuplicatePendingRequest
		}
	}

	pr.ID = newID()
	pr.Status = access.RequestStatusPending
	pr.DecidedBy = nil
	pr.DecidedAt = nil
	pr.RejectionReason = nil
	pr.CreatedAt = r.s.now()
	pr.UpdatedAt = pr.CreatedAt
	r.s.data.requests[pr.ID] = pr
	return r.s.joinRequest(pr), nil
}

func (r *permissionRequestRepository) GetByID(_ context.Context, id string) (access.PermissionRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pr, ok := r.s.data.requests[id]
	if !ok {
		return access.PermissionRequest{}, access.ErrRequestNotFound
	}
	return r.s.joinRequest(pr), nil
}

func (r *permissionRequestRepository) List(_ context.Context, filter access.RequestFilter) ([]access.PermissionRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]access.PermissionRequest, 0)
	for _, pr := range r.s.data.requests {
		if filter.CompanyID != nil && pr.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.UserID != nil && pr.UserID != *filter.UserID {
			continue
		}
		if filter.DoorID != nil && pr.DoorID != *filter.DoorID {
			continue
		}
		if filter.Status != nil && string(pr.Status) != *filter.Status {
			continue
		}
		matched = append(matched, r.s.joinRequest(pr))
	}
	sortNewestFirst(matched, func(pr access.PermissionRequest) time.Time { return pr.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *permissionRequestRepository) ExistsPending(_ context.Context, userID, doorID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, pr := range r.s.data.requests {
		if pr.UserID == userID && pr.DoorID == doorID && pr.Status == access.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *permissionRequestRepository) Decide(ctx context.Context, id string, status access.RequestStatus, decidedBy string, decidedAt time.Time, rejectionReason *string) (access.PermissionRequest, error) {
	defer r.s.lockWrite(ctx)()

	pr, ok := r.s.data.requests[id]
	if !ok {
		return access.PermissionRequest{}, access.ErrRequestNotFound
	}
	if !pr.Status.CanTransitionTo(status) {
		return access.PermissionRequest{}, access.ErrRequestNotPending
	}

	pr.Status = status
	pr.DecidedBy = strPtr(decidedBy)
	at := decidedAt
	pr.DecidedAt = &at
	if rejectionReason != nil {
		pr.RejectionReason = strPtr(*rejectionReason)
	}
	pr.UpdatedAt = r.s.now()
	r.s.data.requests[id] = pr
	return r.s.joinRequest(pr), nil
}

type ledgerRepository struct {
	s *Store
}

func (s *Store) Ledger() access.LedgerRepository {
	return &ledgerRepository{s: s}
}

func (s *Store) joinEntry(e access.AccessEntry) access.AccessEntry {
	if d, ok := s.data.doors[e.DoorID]; ok {
		e.DoorCode = strPtr(d.DoorCode)
		e.RoomName = strPtr(d.RoomName)
	}
	return e
}

func (r *ledgerRepository) findLocked(userID, doorID string) (access.AccessEntry, bool) {
	for _, e := range r.s.data.ledger {
		if e.UserID == userID && e.DoorID == doorID {
			return e, true
		}
	}
	return access.AccessEntry{}, false
}

func (r *ledgerRepository) Create(ctx context.Context, e access.AccessEntry) (access.AccessEntry, error) {
	defer r.s.lockWrite(ctx)()

	if _, exists := r.findLocked(e.UserID, e.DoorID); exists {
		return access.AccessEntry{}, access.ErrAccessAlreadyGranted
	}
	e.ID = newID()
	e.CreatedAt = r.s.now()
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	r.s.data.ledger[e.ID] = e
	return r.s.joinEntry(e), nil
}

func (r *ledgerRepository) GetByID(_ context.Context, id string) (access.AccessEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.data.ledger[id]
	if !ok {
		return access.AccessEntry{}, access.ErrAccessEntryNotFound
	}
	return r.s.joinEntry(e), nil
}

func (r *ledgerRepository) GetByUserAndDoor(_ context.Context, userID, doorID string) (access.AccessEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.findLocked(userID, doorID)
	if !ok {
		return access.AccessEntry{}, access.ErrAccessEntryNotFound
	}
	return r.s.joinEntry(e), nil
}

func (r *ledgerRepository) ListByUser(_ context.Context, userID string) ([]access.AccessEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]access.AccessEntry, 0)
	for _, e := range r.s.data.ledger {
		if e.UserID == userID {
			out = append(out, r.s.joinEntry(e))
		}
	}
	sortNewestFirst(out, func(e access.AccessEntry) time.Time { return e.Date })
	return out, nil
}

func (r *ledgerRepository) ListByDoor(_ context.Context, doorID string) ([]access.AccessEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]access.AccessEntry, 0)
	for _, e := range r.s.data.ledger {
		if e.DoorID == doorID {
			out = append(out, r.s.joinEntry(e))
		}
	}
	sortNewestFirst(out, func(e access.AccessEntry) time.Time { return e.Date })
	return out, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.data.ledger[id]; !ok {
		return access.ErrAccessEntryNotFound
	}
	delete(r.s.data.ledger, id)
	return nil
}

func (r *ledgerRepository) StampIn(ctx context.Context, userID, doorID string, at time.Time) (bool, error) {
	defer r.s.lockWrite(ctx)()

	e, ok := r.findLocked(userID, doorID)
	if !ok {
		return false, nil
	}
	e.InTime = &at
	e.OutTime = nil
	r.s.data.ledger[e.ID] = e
	return true, nil
}

func (r *ledgerRepository) StampOut(ctx context.Context, userID, doorID string, at time.Time) (bool, error) {
	defer r.s.lockWrite(ctx)()

	e, ok := r.findLocked(userID, doorID)
	if !ok {
		return false, nil
	}
	e.OutTime = &at
	r.s.data.ledger[e.ID] = e
	return true, nil
}
