package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/events"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

// maxPage is the page size used when a read has to walk every matching row.
const maxPage = 100

type AccessServiceImpl struct {
	tx        database.Transactor
	requests  access.PermissionRequestRepository
	ledger    access.LedgerRepository
	users     user.UserRepository
	doors     door.DoorRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewAccessService(
	tx database.Transactor,
	requests access.PermissionRequestRepository,
	ledger access.LedgerRepository,
	users user.UserRepository,
	doors door.DoorRepository,
	publisher events.Publisher,
) access.AccessService {
	return &AccessServiceImpl{
		tx:        tx,
		requests:  requests,
		ledger:    ledger,
		users:     users,
		doors:     doors,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest implements access.AccessService.
func (s *AccessServiceImpl) CreateRequest(ctx context.Context, principal user.Principal, req access.CreatePermissionRequestRequest) (access.PermissionRequestResponse, error) {
	if principal.Role == user.RoleUser {
		if req.UserID == "" {
			req.UserID = principal.SubjectID
		}
		if err := principal.Require(user.PermissionRequestCreateOwn); err != nil {
			return access.PermissionRequestResponse{}, err
		}
		if !principal.IsSelf(req.UserID) {
			return access.PermissionRequestResponse{}, user.ErrInsufficientPermissions
		}
	} else if err := principal.Require(user.PermissionRequestCreate); err != nil {
		return access.PermissionRequestResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return access.PermissionRequestResponse{}, err
	}

	var created access.PermissionRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, d, err := s.resolvePair(ctx, principal, req.UserID, req.DoorID)
		if err != nil {
			return err
		}

		pending, err := s.requests.ExistsPending(ctx, u.ID, d.ID)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending {
			return access.ErrDuplicatePendingRequest
		}

		if _, err := s.ledger.GetByUserAndDoor(ctx, u.ID, d.ID); err == nil {
			return access.ErrAccessAlreadyGranted
		} else if !errors.Is(err, access.ErrAccessEntryNotFound) {
			return fmt.Errorf("failed to check door access: %w", err)
		}

		created, err = s.requests.Create(ctx, access.PermissionRequest{
			CompanyID: u.CompanyID,
			UserID:    u.ID,
			DoorID:    d.ID,
			Reason:    req.Reason,
		})
		return err
	})
	if err != nil {
		return access.PermissionRequestResponse{}, err
	}

	events.Notify(ctx, s.publisher, events.RequestCreated, events.AccessEvent{
		CompanyID: created.CompanyID,
		RequestID: created.ID,
		UserID:    created.UserID,
		DoorID:    created.DoorID,
		ActorID:   principal.SubjectID,
		Status:    string(created.Status),
	})

	return created.ToResponse(), nil
}

// resolvePair loads the user and door and checks both live in a company the
// principal may act on, and in the same company as each other.
func (s *AccessServiceImpl) resolvePair(ctx context.Context, principal user.Principal, userID, doorID string) (user.User, door.Door, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, door.Door{}, access.ErrUnknownUser
		}
		return user.User{}, door.Door{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !principal.CanAccessCompany(u.CompanyID) {
		return user.User{}, door.Door{}, access.ErrUnknownUser
	}

	d, err := s.doors.GetByID(ctx, doorID)
	if err != nil {
		if errors.Is(err, door.ErrDoorNotFound) {
			return user.User{}, door.Door{}, access.ErrUnknownDoor
		}
		return user.User{}, door.Door{}, fmt.Errorf("failed to get door: %w", err)
	}
	if !principal.CanAccessCompany(d.CompanyID) {
		return user.User{}, door.Door{}, access.ErrUnknownDoor
	}
	if d.CompanyID != u.CompanyID {
		return user.User{}, door.Door{}, access.ErrCrossCompanyReference
	}

	return u, d, nil
}

// getScopedRequest hides requests outside the principal's company as not found.
func (s *AccessServiceImpl) getScopedRequest(ctx context.Context, principal user.Principal, requestID string) (access.PermissionRequest, error) {
	pr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return access.PermissionRequest{}, err
	}
	if !principal.CanAccessCompany(pr.CompanyID) {
		return access.PermissionRequest{}, access.ErrRequestNotFound
	}
	return pr, nil
}

// Approve implements access.AccessService.
func (s *AccessServiceImpl) Approve(ctx context.Context, principal user.Principal, requestID string) (access.PermissionRequestResponse, error) {
	if err := principal.Require(user.PermissionRequestDecide); err != nil {
		return access.PermissionRequestResponse{}, err
	}

	var approved access.PermissionRequest
	var entry access.AccessEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.getScopedRequest(ctx, principal, requestID)
		if err != nil {
			return err
		}
		if !pr.Status.CanTransitionTo(access.RequestStatusApproved) {
			return access.ErrRequestNotPending
		}

		now := s.now()
		approved, err = s.requests.Decide(ctx, pr.ID, access.RequestStatusApproved, principal.SubjectID, now, nil)
		if err != nil {
			return err
		}

		requestRef := approved.ID
		entry, err = s.ledger.Create(ctx, access.AccessEntry{
			CompanyID: approved.CompanyID,
			UserID:    approved.UserID,
			DoorID:    approved.DoorID,
			RequestID: &requestRef,
			Date:      now,
		})
		if err != nil {
			return fmt.Errorf("failed to grant door access: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, access.ErrRequestNotPending) && !errors.Is(err, access.ErrRequestNotFound) {
			slog.Error("Failed to approve permission request", "request_id", requestID, "error", err)
		}
		return access.PermissionRequestResponse{}, err
	}

	events.Notify(ctx, s.publisher, events.RequestApproved, events.AccessEvent{
		CompanyID: approved.CompanyID,
		RequestID: approved.ID,
		EntryID:   entry.ID,
		UserID:    approved.UserID,
		DoorID:    approved.DoorID,
		ActorID:   principal.SubjectID,
		Status:    string(approved.Status),
	})

	return approved.ToResponse(), nil
}

// Reject implements access.AccessService.
func (s *AccessServiceImpl) Reject(ctx context.Context, principal user.Principal, requestID string, req access.RejectRequestRequest) (access.PermissionRequestResponse, error) {
	if err := principal.Require(user.PermissionRequestDecide); err != nil {
		return access.PermissionRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return access.PermissionRequestResponse{}, err
	}

	var rejected access.PermissionRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.getScopedRequest(ctx, principal, requestID)
		if err != nil {
			return err
		}
		if !pr.Status.CanTransitionTo(access.RequestStatusRejected) {
			return access.ErrRequestNotPending
		}

		rejected, err = s.requests.Decide(ctx, pr.ID, access.RequestStatusRejected, principal.SubjectID, s.now(), req.Reason)
		return err
	})
	if err != nil {
		return access.PermissionRequestResponse{}, err
	}

	events.Notify(ctx, s.publisher, events.RequestRejected, events.AccessEvent{
		CompanyID: rejected.CompanyID,
		RequestID: rejected.ID,
		UserID:    rejected.UserID,
		DoorID:    rejected.DoorID,
		ActorID:   principal.SubjectID,
		Status:    string(rejected.Status),
	})

	return rejected.ToResponse(), nil
}

// RevokeAccess implements access.AccessService.
func (s *AccessServiceImpl) RevokeAccess(ctx context.Context, principal user.Principal, userID string, accessEntryID string) error {
	if err := principal.Require(user.PermissionAccessRevoke); err != nil {
		return err
	}

	var entry access.AccessEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.ledger.GetByID(ctx, accessEntryID)
		if err != nil {
			return err
		}
		if entry.UserID != userID || !principal.CanAccessCompany(entry.CompanyID) {
			return access.ErrAccessEntryNotFound
		}
		return s.ledger.Delete(ctx, entry.ID)
	})
	if err != nil {
		return err
	}

	events.Notify(ctx, s.publisher, events.AccessRevoked, events.AccessEvent{
		CompanyID: entry.CompanyID,
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		DoorID:    entry.DoorID,
		ActorID:   principal.SubjectID,
	})
	return nil
}

// GetRequest implements access.AccessService.
func (s *AccessServiceImpl) GetRequest(ctx context.Context, principal user.Principal, requestID string) (access.PermissionRequestResponse, error) {
	pr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return access.PermissionRequestResponse{}, err
	}

	if principal.Role == user.RoleUser {
		if !principal.Can(user.PermissionRequestViewOwn) || !principal.IsSelf(pr.UserID) {
			return access.PermissionRequestResponse{}, access.ErrRequestNotFound
		}
	} else {
		if err := principal.Require(user.PermissionRequestViewAll); err != nil {
			return access.PermissionRequestResponse{}, err
		}
		if !principal.CanAccessCompany(pr.CompanyID) {
			return access.PermissionRequestResponse{}, access.ErrRequestNotFound
		}
	}

	return pr.ToResponse(), nil
}

// ListRequests implements access.AccessService.
func (s *AccessServiceImpl) ListRequests(ctx context.Context, principal user.Principal, filter access.RequestFilter) (access.ListRequestResponse, error) {
	if principal.Role == user.RoleUser {
		if err := principal.Require(user.PermissionRequestViewOwn); err != nil {
			return access.ListRequestResponse{}, err
		}
		self := principal.SubjectID
		filter.UserID = &self
	} else if err := principal.Require(user.PermissionRequestViewAll); err != nil {
		return access.ListRequestResponse{}, err
	}
	filter.CompanyID = principal.ScopeFor()

	if err := filter.Validate(); err != nil {
		return access.ListRequestResponse{}, err
	}
	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return access.ListRequestResponse{}, fmt.Errorf("failed to list permission requests: %w", err)
	}

	responses := make([]access.PermissionRequestResponse, 0, len(requests))
	for _, pr := range requests {
		responses = append(responses, pr.ToResponse())
	}

	return access.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Requests:   responses,
	}, nil
}

// authorizeUserRead checks the principal may read the user's access data.
func (s *AccessServiceImpl) authorizeUserRead(ctx context.Context, principal user.Principal, userID string, own, all user.Permission) error {
	if principal.Role == user.RoleUser {
		if !principal.Can(own) || !principal.IsSelf(userID) {
			return user.ErrInsufficientPermissions
		}
		return nil
	}
	if err := principal.Require(all); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !principal.CanAccessCompany(u.CompanyID) {
		return user.ErrUserNotFound
	}
	return nil
}

// ListUserAccess implements access.AccessService.
func (s *AccessServiceImpl) ListUserAccess(ctx context.Context, principal user.Principal, userID string) ([]access.AccessEntryResponse, error) {
	if err := s.authorizeUserRead(ctx, principal, userID, user.PermissionAccessViewOwn, user.PermissionAccessViewAll); err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list door access: %w", err)
	}

	responses := make([]access.AccessEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, e.ToResponse())
	}
	return responses, nil
}

// ListPendingForUser implements access.AccessService.
func (s *AccessServiceImpl) ListPendingForUser(ctx context.Context, principal user.Principal, userID string) ([]access.PermissionRequestResponse, error) {
	if err := s.authorizeUserRead(ctx, principal, userID, user.PermissionRequestViewOwn, user.PermissionRequestViewAll); err != nil {
		return nil, err
	}

	status := string(access.RequestStatusPending)
	return s.listAll(ctx, access.RequestFilter{UserID: &userID, Status: &status})
}

// ListApprovedForDoor implements access.AccessService. It returns the
// approved requests whose ledger entry is still in place.
func (s *AccessServiceImpl) ListApprovedForDoor(ctx context.Context, principal user.Principal, doorID string) ([]access.PermissionRequestResponse, error) {
	if err := principal.Require(user.PermissionDoorView); err != nil {
		return nil, err
	}

	d, err := s.doors.GetByID(ctx, doorID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessCompany(d.CompanyID) {
		return nil, door.ErrDoorNotFound
	}

	status := string(access.RequestStatusApproved)
	filter := access.RequestFilter{DoorID: &doorID, Status: &status}
	if principal.Role == user.RoleUser {
		self := principal.SubjectID
		filter.UserID = &self
	}
	approved, err := s.listAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListByDoor(ctx, doorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list door access: %w", err)
	}
	granted := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.RequestID != nil {
			granted[*e.RequestID] = true
		}
	}

	// a revoked grant leaves its request approved; only live grants are listed
	current := make([]access.PermissionRequestResponse, 0, len(approved))
	for _, pr := range approved {
		if granted[pr.ID] {
			current = append(current, pr)
		}
	}
	return current, nil
}

func (s *AccessServiceImpl) listAll(ctx context.Context, filter access.RequestFilter) ([]access.PermissionRequestResponse, error) {
	responses := make([]access.PermissionRequestResponse, 0)
	filter.Limit = maxPage
	for page := 1; ; page++ {
		filter.Page = page
		requests, total, err := s.requests.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list permission requests: %w", err)
		}
		for _, pr := range requests {
			responses = append(responses, pr.ToResponse())
		}
		if len(requests) == 0 || int64(len(responses)) >= total {
			return responses, nil
		}
	}
}

// CheckAccess implements access.AccessService.
func (s *AccessServiceImpl) CheckAccess(ctx context.Context, principal user.Principal, userID string, doorID string) (access.DecisionResponse, error) {
	if principal.Role == user.RoleUser {
		if !principal.Can(user.PermissionAccessViewOwn) || !principal.IsSelf(userID) {
			return access.DecisionResponse{}, user.ErrInsufficientPermissions
		}
	} else if err := principal.Require(user.PermissionAccessViewAll); err != nil {
		return access.DecisionResponse{}, err
	}

	_, d, err := s.resolvePair(ctx, principal, userID, doorID)
	if err != nil {
		return access.DecisionResponse{}, err
	}

	decision := access.Decision{UserID: userID, DoorID: doorID, CheckedAt: s.now()}
	switch {
	case !d.IsOperational():
		decision.Reason = access.DecisionDoorInactive
	default:
		_, err := s.ledger.GetByUserAndDoor(ctx, userID, doorID)
		switch {
		case err == nil:
			decision.Granted = true
			decision.Reason = access.DecisionGranted
		case errors.Is(err, access.ErrAccessEntryNotFound):
			decision.Reason = access.DecisionNoAccess
		default:
			return access.DecisionResponse{}, fmt.Errorf("failed to check door access: %w", err)
		}
	}

	return decision.ToResponse(), nil
}
