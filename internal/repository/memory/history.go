package memory

import (
	"context"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
)

type historyRepository struct {
	s *Store
}

func (s *Store) History() history.HistoryRepository {
	return &historyRepository{s: s}
}

func (s *Store) joinHistory(e history.Entry) history.Entry {
	if d, ok := s.data.doors[e.DoorID]; ok {
		e.DoorCode = strPtr(d.DoorCode)
		e.RoomName = strPtr(d.RoomName)
	}
	return e
}

func (r *historyRepository) Create(ctx context.Context, e history.Entry) (history.Entry, error) {
	defer r.s.lockWrite(ctx)()

	for _, other := range r.s.data.history {
		if other.UserID == e.UserID && other.DoorID == e.DoorID && other.Status == history.StatusActive {
			return history.Entry{}, history.ErrActiveEntryExists
		}
	}

	e.ID = newID()
	e.Status = history.StatusActive
	e.ExitTime = nil
	e.CreatedAt = r.s.now()
	e.UpdatedAt = e.CreatedAt
	r.s.data.history[e.ID] = e
	return r.s.joinHistory(e), nil
}

// GetActiveForUpdate relies on the Transactor for exclusivity; there is no row lock.
func (r *historyRepository) GetActiveForUpdate(_ context.Context, userID, doorID string) (history.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.data.history {
		if e.UserID == userID && e.DoorID == doorID && e.Status == history.StatusActive {
			return r.s.joinHistory(e), nil
		}
	}
	return history.Entry{}, history.ErrNoActiveEntry
}

func (r *historyRepository) Close(ctx context.Context, id string, exitTime time.Time) (history.Entry, error) {
	defer r.s.lockWrite(ctx)()

	e, ok := r.s.data.history[id]
	if !ok || e.Status != history.StatusActive {
		return history.Entry{}, history.ErrNoActiveEntry
	}
	e.ExitTime = &exitTime
	e.Status = history.StatusExited
	e.UpdatedAt = r.s.now()
	r.s.data.history[id] = e
	return r.s.joinHistory(e), nil
}

func (r *historyRepository) ListByUser(_ context.Context, filter history.HistoryFilter) ([]history.Entry, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]history.Entry, 0)
	for _, e := range r.s.data.history {
		if e.UserID != filter.UserID {
			continue
		}
		if filter.DoorID != nil && e.DoorID != *filter.DoorID {
			continue
		}
		if filter.Status != nil && string(e.Status) != *filter.Status {
			continue
		}
		matched = append(matched, r.s.joinHistory(e))
	}
	sortNewestFirst(matched, func(e history.Entry) time.Time { return e.EntryTime })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}
