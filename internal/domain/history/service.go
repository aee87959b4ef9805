package history

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type HistoryService interface {
	RecordEntry(ctx context.Context, principal user.Principal, req ScanRequest) (EntryResponse, error)
	RecordExit(ctx context.Context, principal user.Principal, req ScanRequest) (EntryResponse, error)
	ListUserHistory(ctx context.Context, principal user.Principal, filter HistoryFilter) (ListHistoryResponse, error)
}
