package access

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type AccessService interface {
	CreateRequest(ctx context.Context, principal user.Principal, req CreatePermissionRequestRequest) (PermissionRequestResponse, error)
	Approve(ctx context.Context, principal user.Principal, requestID string) (PermissionRequestResponse, error)
	Reject(ctx context.Context, principal user.Principal, requestID string, req RejectRequestRequest) (PermissionRequestResponse, error)
	RevokeAccess(ctx context.Context, principal user.Principal, userID string, accessEntryID string) error

	GetRequest(ctx context.Context, principal user.Principal, requestID string) (PermissionRequestResponse, error)
	ListRequests(ctx context.Context, principal user.Principal, filter RequestFilter) (ListRequestResponse, error)
	ListUserAccess(ctx context.Context, principal user.Principal, userID string) ([]AccessEntryResponse, error)
	ListPendingForUser(ctx context.Context, principal user.Principal, userID string) ([]PermissionRequestResponse, error)
	ListApprovedForDoor(ctx context.Context, principal user.Principal, doorID string) ([]PermissionRequestResponse, error)
	CheckAccess(ctx context.Context, principal user.Principal, userID string, doorID string) (DecisionResponse, error)
}
