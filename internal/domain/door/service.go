package door

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type DoorService interface {
	Create(ctx context.Context, principal user.Principal, req CreateDoorRequest) (DoorResponse, error)
	List(ctx context.Context, principal user.Principal, filter DoorFilter) (ListDoorResponse, error)
	Get(ctx context.Context, principal user.Principal, id string) (DoorResponse, error)
	Update(ctx context.Context, principal user.Principal, id string, req UpdateDoorRequest) (DoorResponse, error)
	UpdateStatus(ctx context.Context, principal user.Principal, id string, req UpdateDoorStatusRequest) (DoorResponse, error)
	Delete(ctx context.Context, principal user.Principal, id string) error
}
