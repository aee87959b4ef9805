package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/events"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type HistoryServiceImpl struct {
	tx        database.Transactor
	history   history.HistoryRepository
	ledger    access.LedgerRepository
	users     user.UserRepository
	doors     door.DoorRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewHistoryService(
	tx database.Transactor,
	historyRepo history.HistoryRepository,
	ledger access.LedgerRepository,
	users user.UserRepository,
	doors door.DoorRepository,
	publisher events.Publisher,
) history.HistoryService {
	return &HistoryServiceImpl{
		tx:        tx,
		history:   historyRepo,
		ledger:    ledger,
		users:     users,
		doors:     doors,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// authorizeScan fills in the caller as the user when omitted and checks the
// principal may record scans for req.UserID.
func (s *HistoryServiceImpl) authorizeScan(principal user.Principal, req *history.ScanRequest) error {
	if principal.Role == user.RoleUser {
		if req.UserID == "" {
			req.UserID = principal.SubjectID
		}
		if err := principal.Require(user.PermissionHistoryRecordOwn); err != nil {
			return err
		}
		if !principal.IsSelf(req.UserID) {
			return user.ErrInsufficientPermissions
		}
		return nil
	}
	return principal.Require(user.PermissionHistoryRecord)
}

func (s *HistoryServiceImpl) resolvePair(ctx context.Context, principal user.Principal, userID, doorID string) (user.User, door.Door, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, door.Door{}, history.ErrUnknownUser
		}
		return user.User{}, door.Door{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !principal.CanAccessCompany(u.CompanyID) {
		return user.User{}, door.Door{}, history.ErrUnknownUser
	}

	d, err := s.doors.GetByID(ctx, doorID)
	if err != nil {
		if errors.Is(err, door.ErrDoorNotFound) {
			return user.User{}, door.Door{}, history.ErrUnknownDoor
		}
		return user.User{}, door.Door{}, fmt.Errorf("failed to get door: %w", err)
	}
	if d.CompanyID != u.CompanyID {
		return user.User{}, door.Door{}, history.ErrUnknownDoor
	}

	return u, d, nil
}

func (s *HistoryServiceImpl) scanTime(req history.ScanRequest) time.Time {
	if req.At.IsZero() {
		return s.now()
	}
	return req.At.UTC()
}

// RecordEntry implements history.HistoryService.
func (s *HistoryServiceImpl) RecordEntry(ctx context.Context, principal user.Principal, req history.ScanRequest) (history.EntryResponse, error) {
	if err := s.authorizeScan(principal, &req); err != nil {
		return history.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return history.EntryResponse{}, err
	}
	at := s.scanTime(req)

	var entry history.Entry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, d, err := s.resolvePair(ctx, principal, req.UserID, req.DoorID)
		if err != nil {
			return err
		}

		entry, err = s.history.Create(ctx, history.Entry{
			CompanyID: u.CompanyID,
			UserID:    u.ID,
			DoorID:    d.ID,
			EntryTime: at,
		})
		if err != nil {
			return err
		}

		if _, err := s.ledger.StampIn(ctx, u.ID, d.ID, at); err != nil {
			return fmt.Errorf("failed to stamp door access: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, history.ErrActiveEntryExists) {
			slog.Error("Failed to record door entry", "user_id", req.UserID, "door_id", req.DoorID, "error", err)
		}
		return history.EntryResponse{}, err
	}

	events.Notify(ctx, s.publisher, events.HistoryEntry, events.AccessEvent{
		CompanyID: entry.CompanyID,
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		DoorID:    entry.DoorID,
		ActorID:   principal.SubjectID,
		Status:    string(entry.Status),
	})

	return entry.ToResponse(), nil
}

// RecordExit implements history.HistoryService.
func (s *HistoryServiceImpl) RecordExit(ctx context.Context, principal user.Principal, req history.ScanRequest) (history.EntryResponse, error) {
	if err := s.authorizeScan(principal, &req); err != nil {
		return history.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return history.EntryResponse{}, err
	}
	at := s.scanTime(req)

	var closed history.Entry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, d, err := s.resolvePair(ctx, principal, req.UserID, req.DoorID)
		if err != nil {
			return err
		}

		active, err := s.history.GetActiveForUpdate(ctx, u.ID, d.ID)
		if err != nil {
			return err
		}
		if _, err := active.Close(at); err != nil {
			return err
		}

		closed, err = s.history.Close(ctx, active.ID, at)
		if err != nil {
			return err
		}

		if _, err := s.ledger.StampOut(ctx, u.ID, d.ID, at); err != nil {
			return fmt.Errorf("failed to stamp door access: %w", err)
		}
		return nil
	})
	if err != nil {
		return history.EntryResponse{}, err
	}

	events.Notify(ctx, s.publisher, events.HistoryExit, events.AccessEvent{
		CompanyID: closed.CompanyID,
		EntryID:   closed.ID,
		UserID:    closed.UserID,
		DoorID:    closed.DoorID,
		ActorID:   principal.SubjectID,
		Status:    string(closed.Status),
	})

	return closed.ToResponse(), nil
}

// ListUserHistory implements history.HistoryService.
func (s *HistoryServiceImpl) ListUserHistory(ctx context.Context, principal user.Principal, filter history.HistoryFilter) (history.ListHistoryResponse, error) {
	if principal.Role == user.RoleUser {
		if !principal.Can(user.PermissionHistoryViewOwn) || !principal.IsSelf(filter.UserID) {
			return history.ListHistoryResponse{}, user.ErrInsufficientPermissions
		}
	} else {
		if err := principal.Require(user.PermissionHistoryViewAll); err != nil {
			return history.ListHistoryResponse{}, err
		}
		u, err := s.users.GetByID(ctx, filter.UserID)
		if err != nil {
			return history.ListHistoryResponse{}, err
		}
		if !principal.CanAccessCompany(u.CompanyID) {
			return history.ListHistoryResponse{}, user.ErrUserNotFound
		}
	}

	if err := filter.Validate(); err != nil {
		return history.ListHistoryResponse{}, err
	}
	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	entries, total, err := s.history.ListByUser(ctx, filter)
	if err != nil {
		return history.ListHistoryResponse{}, fmt.Errorf("failed to list history: %w", err)
	}

	responses := make([]history.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, e.ToResponse())
	}

	return history.ListHistoryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Entries:    responses,
	}, nil
}
