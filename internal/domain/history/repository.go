package history

import (
	"context"
	"time"
)

// HistoryRepository - interface for access_history table
type HistoryRepository interface {
	// Create appends an active entry. It fails with ErrActiveEntryExists when
	// the user already has an active entry at the door.
	Create(ctx context.Context, entry Entry) (Entry, error)
	// GetActiveForUpdate returns the active entry for (userID, doorID) and
	// locks it for the rest of the transaction. ErrNoActiveEntry if none.
	GetActiveForUpdate(ctx context.Context, userID, doorID string) (Entry, error)
	// Close sets exit_time and status exited on an active entry.
	Close(ctx context.Context, id string, exitTime time.Time) (Entry, error)
	ListByUser(ctx context.Context, filter HistoryFilter) ([]Entry, int64, error)
}
